package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/sherpa/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with timeout, retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → timeout → retry → rate limit → logging → base
	logged := WithLogging(base, eventRepo, logger)
	limited := WithRateLimit(logged, cfg.MinInterval, cfg.RateBurst)
	retried := WithRetry(limited, cfg.Retry)

	return WithTimeout(retried, cfg.Timeout), nil
}

// ResolveConfig returns cfg when its provider is usable, and otherwise
// falls back to the first well-known vendor API key in the environment,
// keeping cfg's timeout and rate settings.
func ResolveConfig(cfg Config) (Config, error) {
	if err := cfg.Validate(); err == nil {
		return cfg, nil
	}
	discovered, ok := DiscoverConfig()
	if !ok {
		return Config{}, fmt.Errorf("no LLM API key found (set SHERPA_LLM_PROVIDER and its key, or ANTHROPIC_API_KEY / OPENAI_API_KEY / GEMINI_API_KEY / OPENROUTER_API_KEY)")
	}
	discovered.Timeout = cfg.Timeout
	discovered.MinInterval = cfg.MinInterval
	discovered.RateBurst = cfg.RateBurst
	return discovered, nil
}
