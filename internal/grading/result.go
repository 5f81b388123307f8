// Package grading evaluates learner answers against generated questions.
package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/studyloop/internal/questiongen"
)

// ErrUnsupportedQuestion is returned for a nil question or one whose
// variant the evaluator does not know.
var ErrUnsupportedQuestion = errors.New("unsupported question")

// Result is the outcome of grading one answer.
type Result struct {
	IsCorrect            bool     `json:"is_correct"`
	Score                float64  `json:"score"`
	Feedback             string   `json:"feedback"`
	DetailedExplanation  string   `json:"detailed_explanation"`
	SuggestedImprovement string   `json:"suggested_improvement"`
	ConfidenceScore      float64  `json:"confidence_score"`
	Mistakes             []string `json:"mistakes"`
}

const (
	feedbackCorrect   = "Correct!"
	feedbackIncorrect = "Incorrect."
)

func scoreFor(correct bool) float64 {
	if correct {
		return 100
	}
	return 0
}

func feedbackFor(correct bool) string {
	if correct {
		return feedbackCorrect
	}
	return feedbackIncorrect
}

// improvementFor suggests what to do next.
func improvementFor(q *questiongen.Question, correct bool) string {
	if correct {
		return "Well done! Try some harder questions next."
	}
	tags := q.Tags[:min(len(q.Tags), 3)]
	if len(tags) == 0 {
		return "Review the explanation and compare it with your answer."
	}
	return fmt.Sprintf("Review these concepts: %s", strings.Join(tags, ", "))
}
