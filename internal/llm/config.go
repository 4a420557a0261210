package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the vendor. Empty means grading runs without an
	// LLM and free-text answers fall back to the neutral score.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for OpenAI-compatible gateways
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string // defaults to defaultOpenRouterBaseURL
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with no provider selected and default
// models for each vendor. Grading replies are a single number, so the
// cheap tier of each vendor is the default.
func DefaultConfig() Config {
	return Config{
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv layers ADAPTIQ_* environment variables over DefaultConfig.
// When ADAPTIQ_LLM_PROVIDER is unset, the standard vendor key variables
// are probed with DiscoverConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if d, ok := DiscoverConfig(); ok {
		cfg = d
	}

	if p := os.Getenv("ADAPTIQ_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	if t := os.Getenv("ADAPTIQ_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	setFromEnv(&cfg.Anthropic.APIKey, "ADAPTIQ_ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Anthropic.Model, "ADAPTIQ_ANTHROPIC_MODEL")
	setFromEnv(&cfg.OpenAI.APIKey, "ADAPTIQ_OPENAI_API_KEY")
	setFromEnv(&cfg.OpenAI.Model, "ADAPTIQ_OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.BaseURL, "ADAPTIQ_OPENAI_BASE_URL")
	setFromEnv(&cfg.Gemini.APIKey, "ADAPTIQ_GEMINI_API_KEY")
	setFromEnv(&cfg.Gemini.Model, "ADAPTIQ_GEMINI_MODEL")
	setFromEnv(&cfg.OpenRouter.APIKey, "ADAPTIQ_OPENROUTER_API_KEY")
	setFromEnv(&cfg.OpenRouter.Model, "ADAPTIQ_OPENROUTER_MODEL")

	return cfg
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini, OpenAI, Anthropic, OpenRouter) and returns a Config for the
// first provider whose key is found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		cfg.Provider = ProviderGemini
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	case os.Getenv("OPENAI_API_KEY") != "":
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case os.Getenv("OPENROUTER_API_KEY") != "":
		cfg.Provider = ProviderOpenRouter
		cfg.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	default:
		return Config{}, false
	}
	return cfg, true
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != ""
}

// Model returns the configured model name for the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderGemini:
		return c.Gemini.Model
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	case ProviderMock:
		return "mock"
	}
	return ""
}

// Validate checks that the selected provider has its required API key set.
// An empty provider is valid.
func (c Config) Validate() error {
	var key, envName string
	switch c.Provider {
	case "", ProviderMock:
		return nil
	case ProviderAnthropic:
		key, envName = c.Anthropic.APIKey, "ADAPTIQ_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, envName = c.OpenAI.APIKey, "ADAPTIQ_OPENAI_API_KEY"
	case ProviderGemini:
		key, envName = c.Gemini.APIKey, "ADAPTIQ_GEMINI_API_KEY"
	case ProviderOpenRouter:
		key, envName = c.OpenRouter.APIKey, "ADAPTIQ_OPENROUTER_API_KEY"
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", envName, c.Provider)
	}
	return nil
}
