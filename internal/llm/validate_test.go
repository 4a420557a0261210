package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-object",
		Description: "A test object",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":  map[string]any{"type": "string"},
				"age":   map[string]any{"type": "integer", "minimum": 0},
				"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			},
			"required": []any{"name", "age"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"name":"Alice","age":10,"grade":"A"}`, false},
		{"valid without optional", `{"name":"Bob","age":8}`, false},
		{"missing required", `{"name":"Charlie"}`, true},
		{"wrong type", `{"name":"Dave","age":"ten"}`, true},
		{"invalid enum", `{"name":"Eve","age":9,"grade":"D"}`, true},
		{"below minimum", `{"name":"Fay","age":-1}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(testSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_NestedArrays(t *testing.T) {
	schema := &Schema{
		Name: "test-nested",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"feedback": map[string]any{"type": "string"},
				"missing_points": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"feedback", "missing_points"},
		},
	}

	valid := json.RawMessage(`{"feedback":"close","missing_points":["dependency array"]}`)
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"feedback":"close","missing_points":[1,2]}`)
	if err := validateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for wrong array item type")
	}
}
