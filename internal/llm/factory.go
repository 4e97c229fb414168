package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config selects a provider by name.
type Config struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Region   string
	Timeout  time.Duration
}

// New builds the provider named in cfg.
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openrouter", "openai":
		return NewOpenRouter(OpenRouterConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		})
	case "anthropic":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("anthropic api key is required")
		}
		return NewAnthropic(AnthropicConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	case "bedrock":
		return NewBedrock(ctx, BedrockConfig{Region: cfg.Region, Model: cfg.Model})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
