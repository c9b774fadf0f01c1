package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	GoogleApiKey    string
	AnthropicApiKey string
	LLMProvider     string
	SearchApiKey    string
	SearchApiURL    string
	ReportDir       string
	Port            string
	MaxRetries      int
	RetryBaseMillis int
}

func Load() *Config {
	return &Config{
		GoogleApiKey:    getEnv("GOOGLE_API_KEY", ""),
		AnthropicApiKey: getEnv("ANTHROPIC_API_KEY", ""),
		LLMProvider:     getEnv("LLM_PROVIDER", ProviderGoogle),
		SearchApiKey:    getEnv("SEARCH_API_KEY", ""),
		SearchApiURL:    getEnv("SEARCH_API_URL", "https://api.firecrawl.dev"),
		ReportDir:       getEnv("REPORT_DIR", "."),
		Port:            getEnv("PORT", "8080"),
		MaxRetries:      getEnvAsInt("MAX_RETRIES", 3),
		RetryBaseMillis: getEnvAsInt("RETRY_BASE_MS", 1000),
	}
}

// Validate checks that the credentials required for a research run are set.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGoogle:
		if c.GoogleApiKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required")
		}
	case ProviderAnthropic:
		if c.AnthropicApiKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER: %s", c.LLMProvider)
	}
	if c.SearchApiKey == "" {
		return fmt.Errorf("SEARCH_API_KEY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
