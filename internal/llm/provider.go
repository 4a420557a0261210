// Package llm abstracts the language-model vendors used for grading and
// feedback behind one Provider interface, with retry and event logging
// decorators.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider generates a completion for a Request.
type Provider interface {
	// Generate sends a prompt and returns the model's reply. When
	// req.Schema is set the reply is JSON validated against it; otherwise
	// Content holds the model's raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Grading and feedback are single-turn,
	// so this is usually one user message.
	Messages []Message

	// Schema, when set, asks the provider for JSON matching it using the
	// vendor's native structured output. Nil means free text.
	Schema *Schema

	MaxTokens int

	// Temperature controls randomness in [0,1]. Zero leaves the vendor
	// default in place for providers that treat it as unset.
	Temperature float64
}

// UserRequest builds a single-turn request.
func UserRequest(system, prompt string, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	}
}

// Message is a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name for
	// OpenAI) and keys the compiled-schema cache. Kebab-case, e.g.
	// "answer-feedback".
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is validated JSON when the request carried a Schema and the
	// model's raw text otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Text returns Content as plain text. A reply that is a JSON string
// literal is unquoted; anything else is returned as-is.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	raw := strings.TrimSpace(string(r.Content))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return s
		}
	}
	return raw
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
