package narrative

import (
	"context"
	"fmt"
	"log/slog"
)

// Provider names accepted by New.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// Default models per provider.
const (
	DefaultGeminiModel    = "gemini-3-flash-preview"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the provider endpoint.
	BaseURL string
}

// New builds the generator for opts.Provider. Without an API key every
// provider degrades to Disabled.
func New(ctx context.Context, opts Options, logger *slog.Logger) (Generator, error) {
	if opts.Provider == "" {
		opts.Provider = ProviderGemini
	}
	if opts.Provider != ProviderNone && opts.APIKey == "" {
		logger.Warn("no AI API key configured, narrative generation disabled", "provider", opts.Provider)
		return Disabled{}, nil
	}

	switch opts.Provider {
	case ProviderGemini:
		return NewGemini(ctx, opts)
	case ProviderOpenAI:
		return NewOpenAI(opts), nil
	case ProviderAnthropic:
		return NewAnthropic(opts), nil
	case ProviderNone:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown narrative provider %q", opts.Provider)
	}
}
