// Package quiz is the screen that asks a round of questions, grades each
// answer and hands the results to the summary screen.
package quiz

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/screens/summary"
	"github.com/abhisek/studyloop/internal/tutor"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/layout"
)

// Grader grades and records one answer.
type Grader interface {
	Submit(ctx context.Context, userID string, q *questiongen.Question, answer string) (*tutor.Submission, error)
}

type phase int

const (
	phaseWaiting phase = iota
	phaseAnswering
	phaseGrading
	phaseFeedback
)

// maxAnswerLen caps free-text answers.
const maxAnswerLen = 500

// Screen implements router.Screen for one round of questions.
type Screen struct {
	grader Grader
	userID string
	source Source
	title  string

	ctx    context.Context
	cancel context.CancelFunc
	events chan tea.Msg

	questions []*questiongen.Question
	total     int
	current   int
	preview   string
	streaming bool

	phase       phase
	confirmQuit bool
	choice      components.Choice
	input       components.TextInput
	last        *tutor.Submission
	gradeErr    error
	results     []*tutor.Submission
	errMsg      string
}

var (
	_ router.Screen          = (*Screen)(nil)
	_ router.KeyHintProvider = (*Screen)(nil)
)

// New creates a quiz over the questions src produces.
func New(title string, grader Grader, userID string, src Source) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		grader: grader,
		userID: userID,
		source: src,
		title:  title,
		ctx:    ctx,
		cancel: cancel,
		input:  components.NewTextInput("Type your answer...", maxAnswerLen),
	}
}

func (s *Screen) Init() tea.Cmd {
	return s.startStream()
}

func (s *Screen) Title() string {
	return s.title
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{{Key: "Y", Description: "End round"}, {Key: "N", Description: "Keep going"}}
	case s.phase == phaseFeedback:
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	case s.phase == phaseAnswering && s.currentQuestion().Type() == questiongen.TypeShortAnswer:
		return []layout.KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Quit"}}
	case s.phase == phaseAnswering:
		return []layout.KeyHint{{Key: "1-9", Description: "Pick"}, {Key: "↑↓ Enter", Description: "Select"}, {Key: "Esc", Description: "Quit"}}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Quit"}}
}

// startStream drains the source on its own goroutine and feeds events to
// the update loop one at a time.
func (s *Screen) startStream() tea.Cmd {
	ch := make(chan tea.Msg)
	s.events = ch
	s.streaming = true

	ctx, src := s.ctx, s.source
	go func() {
		defer close(ch)
		send := func(msg tea.Msg) bool {
			select {
			case ch <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for ev, err := range src(ctx) {
			if err != nil {
				send(streamFailedMsg{Err: err})
				return
			}
			var msg tea.Msg
			switch ev := ev.(type) {
			case questiongen.Started:
				msg = questionStartedMsg{Index: ev.Index, Total: ev.Total}
			case questiongen.Delta:
				msg = questionDeltaMsg{Text: ev.Text}
			case questiongen.Completed:
				msg = questionReadyMsg{Question: ev.Question}
			default:
				continue
			}
			if !send(msg) {
				return
			}
		}
	}()
	return s.waitForEvent()
}

func (s *Screen) waitForEvent() tea.Cmd {
	ch := s.events
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return streamDoneMsg{}
		}
		return msg
	}
}

func (s *Screen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionStartedMsg:
		s.total = max(s.total, msg.Total)
		s.preview = ""
		return s, s.waitForEvent()

	case questionDeltaMsg:
		s.preview += msg.Text
		return s, s.waitForEvent()

	case questionReadyMsg:
		s.questions = append(s.questions, msg.Question)
		s.preview = ""
		var cmd tea.Cmd
		if s.phase == phaseWaiting && s.current == len(s.questions)-1 {
			cmd = s.showQuestion()
		}
		return s, tea.Batch(cmd, s.waitForEvent())

	case streamFailedMsg:
		s.streaming = false
		if len(s.questions) == 0 {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		// Keep what was generated; the round just ends early.
		s.total = len(s.questions)
		return s, s.finishIfDone()

	case streamDoneMsg:
		s.streaming = false
		s.total = len(s.questions)
		if len(s.questions) == 0 {
			s.errMsg = "no questions could be generated"
			return s, nil
		}
		return s, s.finishIfDone()

	case gradedMsg:
		return s.handleGraded(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseAnswering && s.currentQuestion().Type() == questiongen.TypeShortAnswer {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) currentQuestion() *questiongen.Question {
	if s.current < len(s.questions) {
		return s.questions[s.current]
	}
	return nil
}

// showQuestion prepares the input widget for the current question.
func (s *Screen) showQuestion() tea.Cmd {
	q := s.currentQuestion()
	if q == nil {
		return nil
	}
	s.phase = phaseAnswering
	s.last, s.gradeErr = nil, nil
	if q.Type() == questiongen.TypeShortAnswer {
		s.input = components.NewTextInput("Type your answer...", maxAnswerLen)
		return s.input.Init()
	}
	s.choice = components.NewChoice(q.Options())
	return nil
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (router.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		s.cancel()
		return s, router.Pop
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, s.finish()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch s.phase {
	case phaseFeedback:
		return s, s.advance()

	case phaseGrading:
		return s, nil

	case phaseWaiting:
		if key == "esc" {
			s.confirmQuit = true
		}
		return s, nil
	}

	// Answering.
	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	q := s.currentQuestion()
	if q.Type() == questiongen.TypeShortAnswer {
		if key == "enter" {
			if s.input.Value() == "" {
				return s, nil
			}
			return s, s.submit(s.input.Value())
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	s.choice, _ = s.choice.Update(msg)
	if s.choice.Submitted {
		return s, s.submit(s.choice.Value())
	}
	return s, nil
}

func (s *Screen) submit(answer string) tea.Cmd {
	s.phase = phaseGrading
	ctx, grader, user, q := s.ctx, s.grader, s.userID, s.currentQuestion()
	return func() tea.Msg {
		sub, err := grader.Submit(ctx, user, q, answer)
		return gradedMsg{Submission: sub, Err: err}
	}
}

func (s *Screen) handleGraded(msg gradedMsg) (router.Screen, tea.Cmd) {
	if errors.Is(msg.Err, context.Canceled) {
		return s, nil
	}
	s.phase = phaseFeedback
	s.last, s.gradeErr = msg.Submission, msg.Err
	if msg.Err == nil {
		s.results = append(s.results, msg.Submission)
	}
	return s, nil
}

// advance moves past the feedback for the current question.
func (s *Screen) advance() tea.Cmd {
	s.current++
	if s.current < len(s.questions) {
		return s.showQuestion()
	}
	s.phase = phaseWaiting
	return s.finishIfDone()
}

func (s *Screen) finishIfDone() tea.Cmd {
	if s.streaming || s.current < len(s.questions) || s.phase != phaseWaiting {
		return nil
	}
	return s.finish()
}

// finish stops generation and swaps in the round summary.
func (s *Screen) finish() tea.Cmd {
	s.cancel()
	if len(s.results) == 0 {
		return router.Pop
	}
	results := s.results
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(results)}
	}
}
