package config

import "time"

// LLMConfig holds the response-generation client configuration
type LLMConfig struct {
	// Enabled switches LLM generation on; when false the pipeline uses
	// deterministic templates only
	Enabled bool `mapstructure:"enabled"`

	// BaseURL of an OpenAI-compatible chat completions endpoint
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`

	// Timeout bounds each Phase-2 generation; on expiry the pipeline
	// falls back to templates
	Timeout time.Duration `mapstructure:"timeout"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds client-side rate limiting
type RateLimitConfig struct {
	Requests float64 `mapstructure:"requests" validate:"omitempty,min=0"`
	Burst    int     `mapstructure:"burst" validate:"omitempty,min=0"`
}
