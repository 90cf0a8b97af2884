package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/rcliao/deskmate/internal/embedding"
)

// OllamaGenerator calls a local Ollama server's chat endpoint.
type OllamaGenerator struct {
	client      *api.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewOllamaGenerator creates a generator for o.Model. An empty host defers
// to OLLAMA_HOST.
func NewOllamaGenerator(o Options) (*OllamaGenerator, error) {
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	client, err := embedding.OllamaClient(o.Host)
	if err != nil {
		return nil, err
	}
	return &OllamaGenerator{
		client:      client,
		model:       o.Model,
		temperature: o.Temperature,
		maxTokens:   o.MaxTokens,
	}, nil
}

func (g *OllamaGenerator) Generate(ctx context.Context, system string, history []Message, grounding string) (string, error) {
	msgs := make([]api.Message, 0, len(history)+1)
	if sp := systemPrompt(system, grounding); sp != "" {
		msgs = append(msgs, api.Message{Role: RoleSystem, Content: sp})
	}
	for _, m := range history {
		msgs = append(msgs, api.Message{Role: m.Role, Content: m.Content})
	}

	req := &api.ChatRequest{
		Model:    g.model,
		Messages: msgs,
		Stream:   new(bool),
		Options:  map[string]interface{}{"temperature": g.temperature},
	}
	if g.maxTokens > 0 {
		req.Options["num_predict"] = g.maxTokens
	}

	var reply strings.Builder
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat request failed: %w", err)
	}
	text := strings.TrimSpace(reply.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
