package llm

import "context"

// Purpose labels what a model call is for. It is stored with every audit
// event and is the grouping key of `llm stats`.
type Purpose = string

const (
	PurposeConceptExtraction Purpose = "concept-extraction"
	PurposeQuestionGen       Purpose = "question-gen"
	PurposeGrading           Purpose = "grading"

	purposeUnknown Purpose = "unknown"
)

type ctxKey int

const (
	purposeKey ctxKey = iota
	requestIDKey
)

// WithPurpose labels calls made with ctx.
func WithPurpose(ctx context.Context, purpose Purpose) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) Purpose {
	if v, ok := ctx.Value(purposeKey).(Purpose); ok && v != "" {
		return v
	}
	return purposeUnknown
}

// WithRequestID tags calls made with ctx so their log lines can be joined
// with the HTTP request that caused them.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
