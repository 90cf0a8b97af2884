package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator calls any OpenAI-compatible chat completion API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIGenerator creates a generator. Host, when set, replaces the API
// base URL.
func NewOpenAIGenerator(o Options) (*OpenAIGenerator, error) {
	if o.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if o.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	config := openai.DefaultConfig(o.APIKey)
	if o.Host != "" {
		config.BaseURL = o.Host
	}
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(config),
		model:       o.Model,
		temperature: float32(o.Temperature),
		maxTokens:   o.MaxTokens,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, system string, history []Message, grounding string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if sp := systemPrompt(system, grounding); sp != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: sp})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
