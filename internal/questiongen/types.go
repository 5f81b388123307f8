// Package questiongen synthesizes quiz questions from study material chunks.
package questiongen

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Type identifies the question variant.
type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeShortAnswer    Type = "short_answer"
	TypeTrueFalse      Type = "true_false"
)

// AllTypes lists every supported variant.
var AllTypes = []Type{TypeMultipleChoice, TypeShortAnswer, TypeTrueFalse}

// ParseType parses a variant name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeMultipleChoice, TypeShortAnswer, TypeTrueFalse:
		return t, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// Difficulty is the target difficulty assigned by the schedule.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Metadata keys set by the generator.
const (
	MetaGenerationMethod = "generation_method"
	MetaScoringCriteria  = "scoring_criteria"
	MetaSource           = "source"
)

// Values of MetaGenerationMethod.
const (
	MethodLLM       = "llm"
	MethodLLMStream = "llm_stream"
	MethodFallback  = "fallback"
)

// Question is a generated question. The variant-specific part lives in
// Body.
type Question struct {
	ID            string
	Content       string
	CorrectAnswer string
	Explanation   string
	Difficulty    Difficulty
	SourceChunks  []string
	Tags          []string
	Metadata      map[string]any
	Body          Body
}

// Body is the sealed variant payload of a Question.
type Body interface {
	questionType() Type
}

// MultipleChoice carries the answer options. CorrectAnswer is one of them.
type MultipleChoice struct {
	Options []string
}

// ShortAnswer carries the rubric criteria used for grading.
type ShortAnswer struct {
	Criteria []string
}

// TrueFalse has no extra payload. CorrectAnswer is "True" or "False".
type TrueFalse struct{}

func (*MultipleChoice) questionType() Type { return TypeMultipleChoice }
func (*ShortAnswer) questionType() Type    { return TypeShortAnswer }
func (*TrueFalse) questionType() Type      { return TypeTrueFalse }

// TrueFalseOptions are the options shown for every true/false question.
var TrueFalseOptions = []string{"True", "False"}

// Type returns the variant, or "" when Body is nil.
func (q *Question) Type() Type {
	if q.Body == nil {
		return ""
	}
	return q.Body.questionType()
}

// Options returns the options presented to the learner. Short-answer
// questions have none.
func (q *Question) Options() []string {
	switch b := q.Body.(type) {
	case *MultipleChoice:
		return b.Options
	case *TrueFalse:
		return TrueFalseOptions
	}
	return nil
}

// Criteria returns the scoring criteria of a short-answer question.
func (q *Question) Criteria() []string {
	if b, ok := q.Body.(*ShortAnswer); ok {
		return b.Criteria
	}
	return nil
}

// QuestionID derives the stable id of a question from its content and
// difficulty.
func QuestionID(content string, difficulty Difficulty) string {
	sum := sha256.Sum256([]byte(content + "_" + string(difficulty)))
	return hex.EncodeToString(sum[:])[:12]
}

type questionJSON struct {
	ID            string         `json:"id"`
	Type          Type           `json:"type"`
	Content       string         `json:"content"`
	Options       []string       `json:"options"`
	CorrectAnswer string         `json:"correct_answer"`
	Explanation   string         `json:"explanation"`
	Difficulty    Difficulty     `json:"difficulty"`
	SourceChunks  []string       `json:"source_chunks"`
	Tags          []string       `json:"tags"`
	Criteria      []string       `json:"scoring_criteria,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON encodes the question flat, with a "type" discriminator.
func (q *Question) MarshalJSON() ([]byte, error) {
	if q.Body == nil {
		return nil, fmt.Errorf("question %s has no body", q.ID)
	}
	options := q.Options()
	if options == nil {
		options = []string{}
	}
	return json.Marshal(questionJSON{
		ID:            q.ID,
		Type:          q.Type(),
		Content:       q.Content,
		Options:       options,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Difficulty:    q.Difficulty,
		SourceChunks:  q.SourceChunks,
		Tags:          q.Tags,
		Criteria:      q.Criteria(),
		Metadata:      q.Metadata,
	})
}

// UnmarshalJSON decodes the flat form produced by MarshalJSON.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var body Body
	switch raw.Type {
	case TypeMultipleChoice:
		body = &MultipleChoice{Options: raw.Options}
	case TypeShortAnswer:
		body = &ShortAnswer{Criteria: raw.Criteria}
	case TypeTrueFalse:
		body = &TrueFalse{}
	default:
		return fmt.Errorf("unknown question type %q", raw.Type)
	}

	*q = Question{
		ID:            raw.ID,
		Content:       raw.Content,
		CorrectAnswer: raw.CorrectAnswer,
		Explanation:   raw.Explanation,
		Difficulty:    raw.Difficulty,
		SourceChunks:  raw.SourceChunks,
		Tags:          raw.Tags,
		Metadata:      raw.Metadata,
		Body:          body,
	}
	return nil
}
