package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "accordo"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "accordo"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "accordo.db"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// LLM defaults
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 8 * time.Second
	}
	if cfg.LLM.RateLimit.Requests == 0 {
		cfg.LLM.RateLimit.Requests = 2
	}
	if cfg.LLM.RateLimit.Burst == 0 {
		cfg.LLM.RateLimit.Burst = 4
	}

	// Engine defaults
	if cfg.Engine.SuggestionTTL == 0 {
		cfg.Engine.SuggestionTTL = 5 * time.Minute
	}
	if cfg.Engine.SuggestionCapacity == 0 {
		cfg.Engine.SuggestionCapacity = 100
	}
	if cfg.Engine.HookWorkers == 0 {
		cfg.Engine.HookWorkers = 4
	}
	if cfg.Engine.HookQueue == 0 {
		cfg.Engine.HookQueue = 64
	}
	if cfg.Engine.MaxMessageBytes == 0 {
		cfg.Engine.MaxMessageBytes = 8 * 1024
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
