package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped so that
// callers go through retry first and every attempt is logged:
// caller → retry → logging → vendor.
//
// events and log may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewMockProvider()
	case "":
		return nil, ErrNoProvider
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	log.Info("llm provider ready", "provider", cfg.Provider, "model", base.ModelID())

	logged := WithLogging(base, cfg.Provider, events, log)
	return WithRetry(logged, cfg.Retry), nil
}
