package quiz

import (
	"context"
	"iter"

	"github.com/abhisek/studyloop/internal/questiongen"
)

// Source produces the questions for one round as generation events.
type Source func(ctx context.Context) iter.Seq2[questiongen.Event, error]

// FromStream adapts a streaming generator call.
func FromStream(stream func(ctx context.Context) iter.Seq2[questiongen.Event, error]) Source {
	return Source(stream)
}

// FromList adapts a call that returns every question at once.
func FromList(load func(ctx context.Context) ([]*questiongen.Question, error)) Source {
	return func(ctx context.Context) iter.Seq2[questiongen.Event, error] {
		return func(yield func(questiongen.Event, error) bool) {
			questions, err := load(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			for i, q := range questions {
				if !yield(questiongen.Started{Index: i + 1, Total: len(questions)}, nil) {
					return
				}
				if !yield(questiongen.Completed{Question: q}, nil) {
					return
				}
			}
		}
	}
}

// FromQuestions serves a fixed list.
func FromQuestions(questions []*questiongen.Question) Source {
	return FromList(func(context.Context) ([]*questiongen.Question, error) {
		return questions, nil
	})
}
