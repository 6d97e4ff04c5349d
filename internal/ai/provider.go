package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoAPIKey is returned by NewProvider when no credential is configured.
var ErrNoAPIKey = errors.New("no API key configured")

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("empty response from provider")

// Provider is the interface that all language-model providers implement.
type Provider interface {
	// Complete sends a single user-role prompt and returns the model's reply.
	Complete(ctx context.Context, prompt string) (string, error)

	// Model returns the model identifier requests are sent to.
	Model() string
}

// ProviderConfig holds the configuration needed to create a provider.
type ProviderConfig struct {
	Provider    string // "openai" | "anthropic"
	APIKey      string
	Model       string
	BaseURL     string // optional endpoint override
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewProvider creates the appropriate provider based on config.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 300
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "anthropic":
		return NewAnthropicProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
