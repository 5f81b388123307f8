package questiongen

import "github.com/abhisek/studyloop/internal/llm"

var tagsProperty = map[string]any{
	"type":        "array",
	"items":       map[string]any{"type": "string"},
	"description": "Two or three short topic tags for the concepts tested, lowercase with underscores",
}

// MultipleChoiceSchema is the response schema for multiple-choice questions.
var MultipleChoiceSchema = &llm.Schema{
	Name:        "multiple-choice-question",
	Description: "A multiple-choice question with four options and an explanation",
	Strict:      true,
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Exactly 4 answer options, one of which is correct",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"description": "The full text of the correct option, copied exactly",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the correct option is right and why each distractor is wrong",
			},
			"tags": tagsProperty,
		},
		"required":             []any{"question", "options", "correct_answer", "explanation", "tags"},
		"additionalProperties": false,
	},
}

// ShortAnswerSchema is the response schema for short-answer questions.
var ShortAnswerSchema = &llm.Schema{
	Name:        "short-answer-question",
	Description: "A short-answer question with a reference answer and scoring criteria",
	Strict:      true,
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text",
			},
			"reference_answer": map[string]any{
				"type":        "string",
				"description": "A model answer covering every scoring criterion",
			},
			"scoring_criteria": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "The key points a complete answer must contain",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "What the question tests and how to approach it",
			},
			"tags": tagsProperty,
		},
		"required":             []any{"question", "reference_answer", "scoring_criteria", "explanation", "tags"},
		"additionalProperties": false,
	},
}

// TrueFalseSchema is the response schema for true/false statements.
var TrueFalseSchema = &llm.Schema{
	Name:        "true-false-question",
	Description: "A statement to be judged true or false",
	Strict:      true,
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"statement": map[string]any{
				"type":        "string",
				"description": "A single declarative statement about the material",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"enum":        []any{"True", "False"},
				"description": "Whether the statement is true",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the statement is true or false",
			},
		},
		"required":             []any{"statement", "correct_answer", "explanation"},
		"additionalProperties": false,
	},
}

func schemaFor(t Type) *llm.Schema {
	switch t {
	case TypeMultipleChoice:
		return MultipleChoiceSchema
	case TypeShortAnswer:
		return ShortAnswerSchema
	default:
		return TrueFalseSchema
	}
}

type multipleChoiceOutput struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Tags          []string `json:"tags"`
}

type shortAnswerOutput struct {
	Question        string   `json:"question"`
	ReferenceAnswer string   `json:"reference_answer"`
	ScoringCriteria []string `json:"scoring_criteria"`
	Explanation     string   `json:"explanation"`
	Tags            []string `json:"tags"`
}

type trueFalseOutput struct {
	Statement     string `json:"statement"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}
