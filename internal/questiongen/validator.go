package questiongen

import (
	"fmt"
	"slices"
	"strings"
)

// Validator checks a generated question before it is returned.
type Validator interface {
	Name() string
	Validate(q *Question) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator checks required fields and the invariants of each
// variant.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg}
	}

	if strings.TrimSpace(q.Content) == "" {
		return fail("question text is empty")
	}
	if len(q.Content) > 1000 {
		return fail("question text exceeds 1000 characters")
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return fail("correct answer is empty")
	}

	switch b := q.Body.(type) {
	case *MultipleChoice:
		if len(b.Options) != 4 {
			return fail(fmt.Sprintf("expected 4 options, got %d", len(b.Options)))
		}
		if !slices.Contains(b.Options, q.CorrectAnswer) {
			return fail(fmt.Sprintf("correct answer %q is not one of the options", q.CorrectAnswer))
		}
	case *ShortAnswer:
		if len(b.Criteria) == 0 {
			return fail("no scoring criteria")
		}
	case *TrueFalse:
		if !slices.Contains(TrueFalseOptions, q.CorrectAnswer) {
			return fail(fmt.Sprintf("true/false answer must be True or False, got %q", q.CorrectAnswer))
		}
	default:
		return fail("missing question body")
	}
	return nil
}
