package llm

import (
	"testing"
	"time"
)

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ADAPTIQ_LLM_PROVIDER", "ADAPTIQ_LLM_TIMEOUT",
		"ADAPTIQ_ANTHROPIC_API_KEY", "ADAPTIQ_ANTHROPIC_MODEL",
		"ADAPTIQ_OPENAI_API_KEY", "ADAPTIQ_OPENAI_MODEL", "ADAPTIQ_OPENAI_BASE_URL",
		"ADAPTIQ_GEMINI_API_KEY", "ADAPTIQ_GEMINI_MODEL",
		"ADAPTIQ_OPENROUTER_API_KEY", "ADAPTIQ_OPENROUTER_MODEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{}, false},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "sk-or"}}, false},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	clearLLMEnv(t)

	cfg := ConfigFromEnv()
	if cfg.Enabled() {
		t.Fatalf("expected no provider, got %q", cfg.Provider)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ADAPTIQ_LLM_PROVIDER", "OpenAI")
	t.Setenv("ADAPTIQ_OPENAI_API_KEY", "sk-test")
	t.Setenv("ADAPTIQ_OPENAI_MODEL", "gpt-4.1-mini")
	t.Setenv("ADAPTIQ_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderOpenAI {
		t.Fatalf("provider = %q", cfg.Provider)
	}
	if cfg.Model() != "gpt-4.1-mini" || cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("unexpected openai config: %+v", cfg.OpenAI)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDiscoverConfig_PriorityOrder(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")

	cfg, ok := DiscoverConfig()
	if !ok {
		t.Fatal("expected discovery to succeed")
	}
	if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-oai" {
		t.Fatalf("expected openai to win, got %q", cfg.Provider)
	}

	clearLLMEnv(t)
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no discovery without keys")
	}
}
