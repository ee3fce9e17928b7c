package questionbank

import "github.com/zirakhr/zirak/internal/llm"

// QuestionSetSchema defines the JSON schema for AI question generation.
var QuestionSetSchema = &llm.Schema{
	Name:        "skill-quiz",
	Description: "A set of multiple-choice questions assessing a technical skill",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question prompt shown to the candidate",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Exactly 4 answer choices, one of which is correct",
						},
						"correctOptionIndex": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"maximum":     3,
							"description": "Zero-based index of the correct choice in options",
						},
						"difficulty": map[string]any{
							"type":        "string",
							"enum":        []any{"beginner", "intermediate", "advanced", "expert"},
							"description": "Difficulty of this individual question",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining the correct answer",
						},
					},
					"required":             []any{"question", "options", "correctOptionIndex", "difficulty", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}
