// Package config loads deskmate's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	LLM      LLMConfig      `yaml:"llm"`
	Memory   MemoryConfig   `yaml:"memory"`
	Intent   IntentConfig   `yaml:"intent"`
	Speech   SpeechConfig   `yaml:"speech"`
	Controls ControlsConfig `yaml:"controls"`
	Screen   ScreenConfig   `yaml:"screen"`
	Webcam   WebcamConfig   `yaml:"webcam"`
	Audio    AudioConfig    `yaml:"audio"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	LogLevel               string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFile                string        `yaml:"log_file"`
	UseVoiceLoop           bool          `yaml:"use_voice_loop"`
	RequireConfirmationFor []string      `yaml:"require_confirmation_for" validate:"dive,oneof=type_text click move_mouse"`
	TurnTimeout            time.Duration `yaml:"turn_timeout" validate:"gte=0"`
}

// LLMConfig selects the response generator.
type LLMConfig struct {
	Provider     string        `yaml:"provider" validate:"required,oneof=ollama openai"`
	Model        string        `yaml:"model" validate:"required"`
	Host         string        `yaml:"host"`
	APIKey       string        `yaml:"api_key"`
	Temperature  float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens    int           `yaml:"max_tokens" validate:"gte=0"`
	Timeout      time.Duration `yaml:"timeout" validate:"gte=0"`
	MaxRetries   int           `yaml:"max_retries" validate:"gte=0,lte=10"`
	HistoryTurns int           `yaml:"history_turns" validate:"gte=0"`
	SystemPrompt string        `yaml:"system_prompt"`
}

// MemoryConfig configures the memory store and context composition.
type MemoryConfig struct {
	DBPath         string `yaml:"db_path" validate:"required"`
	Collection     string `yaml:"collection_name" validate:"required"`
	MaxBufferSize  int    `yaml:"max_buffer_size" validate:"gte=1"`
	ContextResults int    `yaml:"context_results" validate:"gte=0"`
	PreviewLength  int    `yaml:"preview_length" validate:"gte=1"`
	RetentionDays  int    `yaml:"retention_days" validate:"gte=0"`
	EmbedProvider  string `yaml:"embed_provider" validate:"omitempty,oneof=ollama openai"`
	EmbedModel     string `yaml:"embed_model"`
	EmbedHost      string `yaml:"embed_host"`
}

// IntentConfig bounds validation and optionally replaces the catalog.
type IntentConfig struct {
	MaxX          int    `yaml:"max_x" validate:"gte=1"`
	MaxY          int    `yaml:"max_y" validate:"gte=1"`
	MaxTextLength int    `yaml:"max_text_length" validate:"gte=1"`
	CatalogFile   string `yaml:"catalog_file"`
}

// SpeechConfig configures spoken output.
type SpeechConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Profile string `yaml:"profile" validate:"oneof=jarvis friendly news whisper"`
	// Command is a TTS program invoked as: <command> -s <rate> -a <amplitude> <text>.
	Command string `yaml:"command"`
	Notify  bool   `yaml:"notify"`
}

// ControlsConfig configures desktop input injection.
type ControlsConfig struct {
	ConfirmActions *bool         `yaml:"confirm_actions"`
	XdotoolPath    string        `yaml:"xdotool_path"`
	TypeDelay      time.Duration `yaml:"type_delay" validate:"gte=0"`
}

// ScreenConfig configures screen text capture.
type ScreenConfig struct {
	// OCRCommand is run through the shell and must print the recognized text.
	OCRCommand string `yaml:"ocr_command"`
	MaxChars   int    `yaml:"max_chars" validate:"gte=0"`
}

// WebcamConfig configures the scene description provider.
type WebcamConfig struct {
	Enabled bool `yaml:"enabled"`
	// DescribeCommand is run through the shell and must print a one-line
	// scene description.
	DescribeCommand string        `yaml:"describe_command" validate:"required_if=Enabled true"`
	Interval        time.Duration `yaml:"interval" validate:"gte=0"`
}

// AudioConfig configures speech input for the voice loop.
type AudioConfig struct {
	// STTCommand is run through the shell once per utterance and must print
	// the transcript.
	STTCommand string `yaml:"stt_command"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		App: AppConfig{
			LogLevel:    "info",
			LogFile:     "~/.deskmate/deskmate.log",
			TurnTimeout: 2 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:     "ollama",
			Model:        "llama3:8b-instruct-q4_0",
			Temperature:  0.6,
			MaxTokens:    512,
			Timeout:      90 * time.Second,
			MaxRetries:   2,
			HistoryTurns: 10,
		},
		Memory: MemoryConfig{
			DBPath:         "~/.deskmate/memory.db",
			Collection:     "deskmate_memories",
			MaxBufferSize:  50,
			ContextResults: 5,
			PreviewLength:  200,
			RetentionDays:  30,
		},
		Intent: IntentConfig{
			MaxX:          3000,
			MaxY:          2000,
			MaxTextLength: 1000,
		},
		Speech: SpeechConfig{
			Enabled: boolPtr(true),
			Profile: "jarvis",
		},
		Controls: ControlsConfig{
			ConfirmActions: boolPtr(true),
			XdotoolPath:    "xdotool",
			TypeDelay:      10 * time.Millisecond,
		},
		Screen: ScreenConfig{
			MaxChars: 2000,
		},
		Webcam: WebcamConfig{
			Interval: time.Second,
		},
	}
}

// SpeechEnabled reports whether spoken output is on.
func (c *Config) SpeechEnabled() bool {
	return c.Speech.Enabled == nil || *c.Speech.Enabled
}

// ConfirmActions reports whether desktop actions need confirmation.
func (c *Config) ConfirmActions() bool {
	return c.Controls.ConfirmActions == nil || *c.Controls.ConfirmActions
}

// GetConfigPath resolves the config file: flag value, then DESKMATE_CONFIG,
// then ~/.deskmate/config.yaml.
func GetConfigPath(flag string) string {
	if flag != "" {
		return expandPath(flag)
	}
	if env := os.Getenv("DESKMATE_CONFIG"); env != "" {
		return expandPath(env)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".deskmate", "config.yaml")
}

// Load reads path and merges it onto Defaults. A missing file yields the
// defaults. The result is validated.
func Load(path string) (*Config, error) {
	defaults := Defaults()

	//nolint:gosec // G304: config path is user-specified
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := mergo.Merge(&defaults, fileCfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge config: %w", err)
		}
	}

	cfg := &defaults
	cfg.App.LogFile = expandPath(cfg.App.LogFile)
	cfg.Memory.DBPath = expandPath(cfg.Memory.DBPath)
	cfg.Intent.CatalogFile = expandPath(cfg.Intent.CatalogFile)
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider == "openai" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := ValidateWithDetails(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

func boolPtr(b bool) *bool { return &b }
