package clients

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/anthropic"
)

const (
	ClaudeSonnet ModelType = "claude-sonnet-4-20250514"
	ClaudeHaiku  ModelType = "claude-3-5-haiku-20241022"
)

// AnthropicAi builds a Claude client as the alternative provider.
func AnthropicAi(apiKey string, model ModelType) (*anthropic.LLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is empty")
	}

	var modelName string
	switch model {
	case ClaudeSonnet:
		modelName = string(ClaudeSonnet)
	case ClaudeHaiku:
		modelName = string(ClaudeHaiku)
	default:
		return nil, fmt.Errorf("invalid model type: %s", model)
	}

	llm, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(modelName))
	if err != nil {
		return nil, fmt.Errorf("creating anthropic client: %w", err)
	}

	return llm, nil
}
