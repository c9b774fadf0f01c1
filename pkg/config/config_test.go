package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("SEARCH_API_KEY", "s-key")

	cfg := Load()

	if cfg.LLMProvider != ProviderGoogle {
		t.Errorf("LLMProvider = %q, want %q", cfg.LLMProvider, ProviderGoogle)
	}
	if cfg.SearchApiURL != "https://api.firecrawl.dev" {
		t.Errorf("SearchApiURL = %q, want default firecrawl URL", cfg.SearchApiURL)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryBaseMillis != 1000 {
		t.Errorf("RetryBaseMillis = %d, want 1000", cfg.RetryBaseMillis)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEARCH_API_URL", "http://localhost:3002")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_BASE_MS", "junk")

	cfg := Load()

	if cfg.SearchApiURL != "http://localhost:3002" {
		t.Errorf("SearchApiURL = %q, want override", cfg.SearchApiURL)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RetryBaseMillis != 1000 {
		t.Errorf("RetryBaseMillis = %d, want default on bad value", cfg.RetryBaseMillis)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "google ok",
			cfg:     Config{LLMProvider: ProviderGoogle, GoogleApiKey: "g", SearchApiKey: "s"},
			wantErr: false,
		},
		{
			name:    "missing google key",
			cfg:     Config{LLMProvider: ProviderGoogle, SearchApiKey: "s"},
			wantErr: true,
		},
		{
			name:    "anthropic ok",
			cfg:     Config{LLMProvider: ProviderAnthropic, AnthropicApiKey: "a", SearchApiKey: "s"},
			wantErr: false,
		},
		{
			name:    "missing anthropic key",
			cfg:     Config{LLMProvider: ProviderAnthropic, SearchApiKey: "s"},
			wantErr: true,
		},
		{
			name:    "missing search key",
			cfg:     Config{LLMProvider: ProviderGoogle, GoogleApiKey: "g"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     Config{LLMProvider: "azure", SearchApiKey: "s"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
