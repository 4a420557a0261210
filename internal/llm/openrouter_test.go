package llm

import "testing"

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("model passes through unaliased", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "openai/gpt-mini"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "openai/gpt-mini" {
			t.Errorf("model = %q, want %q", p.ModelID(), "openai/gpt-mini")
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x/y"}); err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("empty model", func(t *testing.T) {
		if _, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test"}); err == nil {
			t.Fatal("expected error for empty model")
		}
	})

	t.Run("custom base URL", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey:  "sk-or-test",
			Model:   "google/gemini-2.0-flash-001",
			BaseURL: "https://gateway.example/v1",
		})
		if err != nil || p == nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
