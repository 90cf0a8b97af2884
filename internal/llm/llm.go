// Package llm generates assistant replies from a chat model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces a reply. The grounding context is appended to the
// system prompt; history ends with the current user message.
type Generator interface {
	Generate(ctx context.Context, system string, history []Message, grounding string) (string, error)
}

// Options selects and tunes a provider.
type Options struct {
	Provider    string // "ollama" | "openai"
	Model       string
	Host        string // Ollama host or OpenAI base URL
	APIKey      string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	// Timeout bounds each attempt. Zero means no per-attempt limit.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// New creates the configured generator, wrapped with retries when
// MaxRetries > 0.
func New(o Options) (Generator, error) {
	var (
		g   Generator
		err error
	)
	switch o.Provider {
	case "ollama":
		g, err = NewOllamaGenerator(o)
	case "openai":
		g, err = NewOpenAIGenerator(o)
	case "":
		return nil, errors.New("llm provider is required")
	default:
		return nil, fmt.Errorf("unknown llm provider %q", o.Provider)
	}
	if err != nil {
		return nil, err
	}
	if o.MaxRetries > 0 || o.Timeout > 0 {
		g = NewRetrying(g, RetryOptions{
			MaxRetries:     uint64(o.MaxRetries),
			AttemptTimeout: o.Timeout,
			Logger:         o.Logger,
		})
	}
	return g, nil
}

// systemPrompt joins the base prompt and grounding context.
func systemPrompt(system, grounding string) string {
	if grounding == "" {
		return system
	}
	return system + "\n\nCurrent Context:\n" + grounding
}
