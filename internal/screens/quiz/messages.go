package quiz

import (
	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/tutor"
)

// questionStartedMsg is sent when generation of a question begins.
type questionStartedMsg struct {
	Index int
	Total int
}

// questionDeltaMsg carries streamed model output for the question being
// generated.
type questionDeltaMsg struct {
	Text string
}

// questionReadyMsg is sent when a question is complete.
type questionReadyMsg struct {
	Question *questiongen.Question
}

// streamFailedMsg ends the stream with an error.
type streamFailedMsg struct {
	Err error
}

// streamDoneMsg is sent once the source is exhausted.
type streamDoneMsg struct{}

// gradedMsg carries the result of submitting an answer.
type gradedMsg struct {
	Submission *tutor.Submission
	Err        error
}
