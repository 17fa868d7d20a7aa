package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func verdictTestSchema() *Schema {
	return &Schema{
		Name:        "test-verdict",
		Description: "A grading verdict",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"outcome":    map[string]any{"type": "string", "enum": []any{"correct", "incorrect", "needs_improvement"}},
				"feedback":   map[string]any{"type": "string"},
				"hint_level": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
			},
			"required": []any{"outcome", "feedback"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"complete", `{"outcome":"correct","feedback":"ok","hint_level":1}`, true},
		{"without optional", `{"outcome":"incorrect","feedback":"wrong sign"}`, true},
		{"missing required", `{"outcome":"correct"}`, false},
		{"wrong type", `{"outcome":"correct","feedback":"ok","hint_level":"one"}`, false},
		{"out of range", `{"outcome":"correct","feedback":"ok","hint_level":4}`, false},
		{"unknown enum", `{"outcome":"partial","feedback":"ok"}`, false},
		{"malformed", `{not json}`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(verdictTestSchema(), json.RawMessage(tt.raw))
			if tt.valid {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			var inv *ErrInvalidResponse
			if !errors.As(err, &inv) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
			if string(inv.Content) != tt.raw {
				t.Errorf("content = %q, want raw response", inv.Content)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`"free text"`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_NestedSlots(t *testing.T) {
	schema := &Schema{
		Name: "test-slots",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"slots": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"goal":  map[string]any{"type": "string"},
							"hints": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
						"required": []string{"goal", "hints"},
					},
				},
			},
			"required": []string{"slots"},
		},
	}

	valid := json.RawMessage(`{"slots":[{"goal":"compute log-ratios","hints":["a","b","c"]}]}`)
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	invalid := json.RawMessage(`{"slots":[{"goal":"compute log-ratios","hints":[1,2,3]}]}`)
	if err := validateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for wrong hint type")
	}
}

func TestValidateResponse_UnnamedSchemaNotCached(t *testing.T) {
	a := &Schema{Definition: map[string]any{"type": "object", "required": []any{"a"}}}
	b := &Schema{Definition: map[string]any{"type": "object", "required": []any{"b"}}}

	if err := validateResponse(a, json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatalf("a: %v", err)
	}
	// A cached "a" schema would accept this.
	if err := validateResponse(b, json.RawMessage(`{"a":1}`)); err == nil {
		t.Fatal("b: expected error")
	}
}
