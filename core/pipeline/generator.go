package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

// DefaultModel is the Claude model used when the caller does not name one
const DefaultModel = "claude-sonnet-4-20250514"

// DefaultGenerator creates a GenerateFunc backed by the Anthropic API.
// The API key is read from ANTHROPIC_API_KEY by the client.
func DefaultGenerator(modelName string) GenerateFunc {
	if modelName == "" {
		modelName = DefaultModel
	}

	client := anthropic.NewClient()

	return func(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(modelName),
			MaxTokens: int64(maxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		}

		if temperature > 0 {
			params.Temperature = anthropic.Float(temperature)
		}

		resp, err := client.Messages.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("completion request failed: %w", err)
		}

		var response strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				response.WriteString(block.Text)
			}
		}

		if response.Len() == 0 {
			return "", fmt.Errorf("no text content in model response")
		}

		return response.String(), nil
	}
}
