package clients

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"deepscout/pkg/config"
)

// NewModel returns the LLM selected by the configuration.
func NewModel(ctx context.Context, cfg *config.Config) (llms.Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderGoogle:
		return GoogleAi(ctx, cfg.GoogleApiKey, DefaultModel)
	case config.ProviderAnthropic:
		return AnthropicAi(cfg.AnthropicApiKey, ClaudeSonnet)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}
