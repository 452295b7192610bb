package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tagloom/internal/config"
	"tagloom/internal/types"
)

// New builds the provider named in the configuration. Supported backends
// are "openai" (any OpenAI-compatible endpoint) and "gemini".
func New(ctx context.Context, cfg config.ProviderConfig, logger *zap.Logger) (types.CompletionProvider, error) {
	switch cfg.Backend {
	case "openai", "":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
			MaxRetries:  cfg.MaxRetries,
		}, logger)
	case "gemini":
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: float32(cfg.Temperature),
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
