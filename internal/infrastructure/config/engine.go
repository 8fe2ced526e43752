package config

import "time"

// EngineConfig holds pipeline and cache tuning
type EngineConfig struct {
	// SuggestionTTL is how long a precomputed suggestion stays valid
	SuggestionTTL time.Duration `mapstructure:"suggestion_ttl"`

	// SuggestionCapacity bounds the suggestion cache
	SuggestionCapacity int `mapstructure:"suggestion_capacity" validate:"omitempty,min=1"`

	// HookWorkers and HookQueue bound the fire-and-forget side-effect pool
	HookWorkers int `mapstructure:"hook_workers" validate:"omitempty,min=1"`
	HookQueue   int `mapstructure:"hook_queue" validate:"omitempty,min=1"`

	// MaxMessageBytes bounds vendor text input
	MaxMessageBytes int `mapstructure:"max_message_bytes" validate:"omitempty,min=1"`
}
