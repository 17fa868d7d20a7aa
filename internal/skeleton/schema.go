package skeleton

import "github.com/abhisek/sherpa/internal/llm"

// Schema defines the JSON schema for LLM skeleton generation responses.
var Schema = &llm.Schema{
	Name:        "exercise-skeleton",
	Description: "An implementation exercise split into ordered TODO slots",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short title of the exercise",
			},
			"header": map[string]any{
				"type":        "string",
				"description": "Code placed before the first TODO: imports, docstring, class declaration",
			},
			"footer": map[string]any{
				"type":        "string",
				"description": "Code placed after the last TODO, e.g. a small usage example. May be empty.",
			},
			"slots": map[string]any{
				"type":        "array",
				"description": "The TODO slots in file order",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"goal": map[string]any{
							"type":        "string",
							"description": "One line stating WHAT the learner must achieve in this slot",
						},
						"concept": map[string]any{
							"type":        "string",
							"description": "The paper concept this slot exercises, e.g. 'log-ratio'",
						},
						"prelude": map[string]any{
							"type":        "string",
							"description": "Code that precedes this slot, such as the enclosing method signature. May be empty.",
						},
						"indent": map[string]any{
							"type":        "string",
							"description": "Whitespace that indents the slot body, e.g. eight spaces inside a method",
						},
						"starter": map[string]any{
							"type":        "string",
							"description": "Initial body for the slot. Empty to use the language placeholder.",
						},
						"solution": map[string]any{
							"type":        "string",
							"description": "Reference implementation of the slot body",
						},
						"hints": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 3 hints of increasing specificity: conceptual, approach, near-solution",
						},
					},
					"required":             []any{"goal", "concept", "prelude", "indent", "starter", "solution", "hints"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "header", "footer", "slots"},
		"additionalProperties": false,
	},
}

// skeletonOutput is the raw LLM response before validation.
type skeletonOutput struct {
	Title  string       `json:"title"`
	Header string       `json:"header"`
	Footer string       `json:"footer"`
	Slots  []slotOutput `json:"slots"`
}

type slotOutput struct {
	Goal     string   `json:"goal"`
	Concept  string   `json:"concept"`
	Prelude  string   `json:"prelude"`
	Indent   string   `json:"indent"`
	Starter  string   `json:"starter"`
	Solution string   `json:"solution"`
	Hints    []string `json:"hints"`
}
