package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/questiongen"
)

const (
	gradeTemperature = 0.1
	gradeMaxTokens   = 1024
)

// GradeSchema is the response schema for short-answer grading. Only score,
// feedback and detailed_explanation are required.
var GradeSchema = &llm.Schema{
	Name:        "short-answer-grade",
	Description: "A rubric-based grade for a learner's short answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_correct": map[string]any{
				"type":        "boolean",
				"description": "Whether the answer is essentially correct",
			},
			"score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     100,
				"description": "Score from 0 to 100",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Overall feedback addressed to the learner",
			},
			"detailed_explanation": map[string]any{
				"type":        "string",
				"description": "Which criteria were met or missed, and why",
			},
			"suggested_improvement": map[string]any{
				"type":        "string",
				"description": "One concrete way to improve the answer",
			},
			"confidence_score": map[string]any{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "How confident the grader is, from 0 to 1",
			},
			"mistakes": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Specific errors or omissions in the answer",
			},
		},
		"required": []any{"score", "feedback", "detailed_explanation"},
	},
}

const gradeSystemPrompt = `You are a fair and objective grader. Grade the learner's answer against the reference answer and the scoring criteria.

Work through these steps before deciding:
1. Check which key points of the reference answer the learner covered.
2. Look for factual errors.
3. Judge completeness and accuracy.
4. Suggest one concrete improvement.

Be neither too strict nor too lenient. Accept answers that express the right ideas in different words.`

var gradeTemplate = template.Must(template.New("grade").Parse(`Question: {{.Question}}

Reference answer: {{.Reference}}

Scoring criteria: {{.Criteria}}

Learner's answer: {{.Answer}}`))

type gradeOutput struct {
	IsCorrect            *bool    `json:"is_correct"`
	Score                float64  `json:"score"`
	Feedback             string   `json:"feedback"`
	DetailedExplanation  string   `json:"detailed_explanation"`
	SuggestedImprovement string   `json:"suggested_improvement"`
	ConfidenceScore      *float64 `json:"confidence_score"`
	Mistakes             []string `json:"mistakes"`
}

func buildGradePrompt(q *questiongen.Question, answer string) (string, error) {
	var criteria bytes.Buffer
	enc := json.NewEncoder(&criteria)
	enc.SetEscapeHTML(false)
	list := q.Criteria()
	if list == nil {
		list = []string{}
	}
	if err := enc.Encode(list); err != nil {
		return "", err
	}

	var b strings.Builder
	err := gradeTemplate.Execute(&b, map[string]string{
		"Question":  q.Content,
		"Reference": q.CorrectAnswer,
		"Criteria":  strings.TrimSpace(criteria.String()),
		"Answer":    answer,
	})
	return b.String(), err
}

func (e *Evaluator) evaluateShortAnswer(ctx context.Context, q *questiongen.Question, answer string) *Result {
	prompt, err := buildGradePrompt(q, answer)
	if err != nil {
		e.log.Warn("grade prompt failed", "question_id", q.ID, "error", err)
		return fallbackResult(q)
	}

	resp, err := e.provider.Generate(llm.WithPurpose(ctx, llm.PurposeGrading), llm.Request{
		System:      gradeSystemPrompt,
		Messages:    llm.UserMessage(prompt),
		Schema:      GradeSchema,
		MaxTokens:   gradeMaxTokens,
		Temperature: gradeTemperature,
	})
	if err != nil {
		e.log.Warn("short answer grading failed, using fallback", "question_id", q.ID, "error", err)
		return fallbackResult(q)
	}

	var out gradeOutput
	if err := llm.DecodeJSON(GradeSchema, resp.Content, &out); err != nil {
		e.log.Warn("short answer grade rejected, using fallback", "question_id", q.ID, "error", err)
		return fallbackResult(q)
	}

	r := &Result{
		IsCorrect:            out.IsCorrect != nil && *out.IsCorrect,
		Score:                out.Score,
		Feedback:             out.Feedback,
		DetailedExplanation:  out.DetailedExplanation,
		SuggestedImprovement: out.SuggestedImprovement,
		ConfidenceScore:      0.8,
		Mistakes:             out.Mistakes,
	}
	if out.ConfidenceScore != nil {
		r.ConfidenceScore = *out.ConfidenceScore
	}
	if r.Mistakes == nil {
		r.Mistakes = []string{}
	}
	if r.SuggestedImprovement == "" {
		r.SuggestedImprovement = improvementFor(q, r.IsCorrect)
	}
	return r
}

// fallbackResult is returned when the model cannot grade an answer.
func fallbackResult(q *questiongen.Question) *Result {
	return &Result{
		IsCorrect:            false,
		Score:                50,
		Feedback:             "Automated grading is temporarily unavailable.",
		DetailedExplanation:  q.Explanation,
		SuggestedImprovement: "Compare your answer with the reference answer.",
		ConfidenceScore:      0.5,
		Mistakes:             []string{"automated grading unavailable"},
	}
}
