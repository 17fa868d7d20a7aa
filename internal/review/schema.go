package review

import "github.com/abhisek/sherpa/internal/llm"

// VerdictSchema defines the JSON schema for grading responses.
var VerdictSchema = &llm.Schema{
	Name:        "review-verdict",
	Description: "Grade of one learner attempt at one TODO slot",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"outcome": map[string]any{
				"type":        "string",
				"enum":        []any{"correct", "incorrect", "needs_improvement"},
				"description": "correct: meets the goal; incorrect: wrong approach or broken; needs_improvement: on track but incomplete or buggy",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Specific, encouraging feedback under 120 words. If correct, explain why it works.",
			},
			"hint": map[string]any{
				"type":        "string",
				"description": "If not correct, a nudge toward the fix without giving the answer. Empty if correct.",
			},
		},
		"required":             []any{"outcome", "feedback", "hint"},
		"additionalProperties": false,
	},
}
