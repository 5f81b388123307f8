package grading

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/studyloop/internal/llm"
	"github.com/abhisek/studyloop/internal/logger"
	"github.com/abhisek/studyloop/internal/questiongen"
)

// Evaluator grades answers. Multiple-choice and true/false answers are
// graded locally; short answers are graded by the model against the
// question's rubric.
type Evaluator struct {
	provider llm.Provider
	log      *logger.Logger
}

// NewEvaluator creates an Evaluator. provider is only used for short
// answers.
func NewEvaluator(provider llm.Provider, log *logger.Logger) *Evaluator {
	return &Evaluator{provider: provider, log: logger.OrNop(log)}
}

// Evaluate grades answer. Model failures during short-answer grading never
// surface as errors; they produce a neutral fallback result instead.
func (e *Evaluator) Evaluate(ctx context.Context, q *questiongen.Question, answer string) (*Result, error) {
	if q == nil {
		return nil, fmt.Errorf("%w: nil question", ErrUnsupportedQuestion)
	}

	switch q.Body.(type) {
	case *questiongen.MultipleChoice:
		return evaluateChoice(q, answer), nil
	case *questiongen.TrueFalse:
		return evaluateTrueFalse(q, answer), nil
	case *questiongen.ShortAnswer:
		return e.evaluateShortAnswer(ctx, q, answer), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedQuestion, q.Body)
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func evaluateChoice(q *questiongen.Question, answer string) *Result {
	correct := normalize(answer) == normalize(q.CorrectAnswer)
	r := &Result{
		IsCorrect:            correct,
		Score:                scoreFor(correct),
		Feedback:             feedbackFor(correct),
		DetailedExplanation:  q.Explanation,
		SuggestedImprovement: improvementFor(q, correct),
		ConfidenceScore:      1,
		Mistakes:             []string{},
	}
	if !correct {
		r.Mistakes = []string{fmt.Sprintf("Selected the wrong option: %s", answer)}
	}
	return r
}

var truthTable = map[string]string{
	"true": "true", "t": "true", "是": "true", "对": "true", "yes": "true", "y": "true",
	"false": "false", "f": "false", "否": "false", "错": "false", "no": "false", "n": "false",
}

// canonicalTruth maps the accepted spellings of true and false to "true"
// and "false". Anything else is returned trimmed and lowercased.
func canonicalTruth(s string) string {
	s = normalize(s)
	if v, ok := truthTable[s]; ok {
		return v
	}
	return s
}

func evaluateTrueFalse(q *questiongen.Question, answer string) *Result {
	correct := canonicalTruth(answer) == canonicalTruth(q.CorrectAnswer)
	r := &Result{
		IsCorrect:            correct,
		Score:                scoreFor(correct),
		Feedback:             feedbackFor(correct),
		DetailedExplanation:  q.Explanation,
		SuggestedImprovement: improvementFor(q, correct),
		ConfidenceScore:      1,
		Mistakes:             []string{},
	}
	if !correct {
		r.Mistakes = []string{fmt.Sprintf("Answered %s, the correct answer is %s", answer, q.CorrectAnswer)}
	}
	return r
}
