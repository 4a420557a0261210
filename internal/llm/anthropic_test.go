package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}
}

func anthropicMessage(text, stopReason string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stopReason,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 3},
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage("0.85", "end_turn"))
	})

	resp, err := p.Generate(context.Background(), UserRequest("You grade answers.", "Reference: x\nAnswer: x", 16))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "0.85" {
		t.Fatalf("unexpected text %q", resp.Text())
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.TotalTokens != 53 {
		t.Fatalf("unexpected usage %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
}

func TestAnthropicProvider_TruncatedStructuredReply(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(`{"name":"Al`, "max_tokens"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		Schema:    testSchema(),
		MaxTokens: 4,
	})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limit", http.StatusTooManyRequests, func(err error) bool {
			var rl *ErrRateLimit
			return errors.As(err, &rl)
		}},
		{"server error", http.StatusInternalServerError, func(err error) bool {
			var u *ErrProviderUnavailable
			return errors.As(err, &u)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": "api_error", "message": "nope"},
				})
			})
			_, err := p.Generate(context.Background(), UserRequest("", "test", 10))
			if !tt.check(err) {
				t.Fatalf("unexpected error type %T (%v)", err, err)
			}
		})
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-5-20250929"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-opus-4-5", "claude-opus-4-5"}, // pass-through
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, anthropicModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
