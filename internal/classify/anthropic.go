package classify

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultClaudeModel = string(anthropic.ModelClaudeSonnet4_0)

// AnthropicBackend completes prompts through the Anthropic Messages API.
type AnthropicBackend struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewAnthropicBackend creates a backend for the given API key and model.
// An empty model falls back to a current Sonnet.
func NewAnthropicBackend(apiKey, model string) *AnthropicBackend {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if model == "" {
		model = defaultClaudeModel
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicBackend{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// Name implements Backend.
func (b *AnthropicBackend) Name() string { return "claude" }

// Complete implements Backend.
func (b *AnthropicBackend) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := b.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in API response")
}
