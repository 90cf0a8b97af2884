// Package cli implements the deskmate CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rcliao/deskmate/internal/config"
	"github.com/rcliao/deskmate/internal/embedding"
	"github.com/rcliao/deskmate/internal/logger"
	"github.com/rcliao/deskmate/internal/memory"
)

var (
	configPath string
	dbPath     string
	logLevel   string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "deskmate",
	Short: "A desktop assistant with memory",
	Long:  "Deskmate classifies what you say, acts on the desktop, remembers the conversation and answers with a local or hosted language model.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $DESKMATE_CONFIG or ~/.deskmate/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Memory database path (overrides memory.db_path)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(config.GetConfigPath(configPath))
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.Memory.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	return cfg
}

// newLogger logs to the configured file. Without one, logs go to stderr at
// warn level or above so command output stays readable.
func newLogger(cfg *config.Config) (zerolog.Logger, io.Closer) {
	level := cfg.App.LogLevel
	if cfg.App.LogFile == "" && logLevel == "" {
		level = "warn"
	}
	log, closer, err := logger.New(logger.Options{
		File:   cfg.App.LogFile,
		Pretty: cfg.App.LogFile == "",
		Level:  level,
	})
	if err != nil {
		exitErr("init logger", err)
	}
	return log, closer
}

func openManager(cfg *config.Config, log zerolog.Logger) *memory.Manager {
	emb, err := embedding.New(embedding.Options{
		Provider: cfg.Memory.EmbedProvider,
		Model:    cfg.Memory.EmbedModel,
		Host:     cfg.Memory.EmbedHost,
		APIKey:   cfg.LLM.APIKey,
	})
	if err != nil {
		log.Warn().Err(err).Msg("embeddings disabled")
		emb = nil
	}
	return memory.Open(cfg.Memory.DBPath, cfg.Memory.Collection, memory.Options{
		Embedder:   emb,
		BufferSize: cfg.Memory.MaxBufferSize,
		Logger:     log,
	})
}

// env bundles what most commands need.
type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	mem    *memory.Manager
	closer io.Closer
}

func setup() *env {
	cfg := loadConfig()
	log, closer := newLogger(cfg)
	return &env{cfg: cfg, log: log, mem: openManager(cfg, log), closer: closer}
}

func (e *env) Close() {
	if err := e.mem.Close(); err != nil {
		e.log.Warn().Err(err).Msg("close memory")
	}
	_ = e.closer.Close()
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
