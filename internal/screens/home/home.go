// Package home is the main menu of the study TUI.
package home

import (
	"context"
	"fmt"
	"iter"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/screens/quiz"
	"github.com/abhisek/studyloop/internal/screens/report"
	"github.com/abhisek/studyloop/internal/screens/review"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/tutor"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

// Service is everything the menu can start.
type Service interface {
	quiz.Grader
	report.Service
	review.Service
	StreamQuestions(ctx context.Context, req tutor.GenerateRequest) iter.Seq2[questiongen.Event, error]
	TargetedPractice(ctx context.Context, userID, sessionID string) ([]*questiongen.Question, error)
}

// Options configures the home screen.
type Options struct {
	UserID    string
	SessionID string
	Source    string // label of the loaded material
	Count     int
	Types     []questiongen.Type
}

type statsMsg struct {
	stats *store.UserStats
	err   error
}

// Screen is the main menu.
type Screen struct {
	svc   Service
	opts  Options
	menu  components.Menu
	stats *store.UserStats
}

var _ router.Screen = (*Screen)(nil)

// New creates the home screen.
func New(svc Service, opts Options) *Screen {
	h := &Screen{svc: svc, opts: opts}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Practice (adaptive mix)", Key: "p", Desc: "All question types, getting harder as you go",
			Action: h.startRound("Practice", tutor.MixAdaptive)},
		{Label: "Warm-up (easy)", Key: "e", Desc: "Multiple choice only",
			Action: h.startRound("Warm-up", tutor.MixEasy)},
		{Label: "Challenge (hard)", Key: "c", Desc: "Short answers graded by the model",
			Action: h.startRound("Challenge", tutor.MixChallenge)},
		{Label: "Work on weak spots", Key: "w", Desc: "Questions on the topics you miss most",
			Action: h.startTargeted},
		{Label: "Review wrong answers", Key: "r", Action: func() tea.Cmd {
			return router.Push(review.New(svc, opts.UserID))
		}},
		{Label: "Progress report", Key: "s", Action: func() tea.Cmd {
			return router.Push(report.New(svc, opts.UserID))
		}},
		{Label: "Quit", Key: "q", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

func (h *Screen) startRound(title string, mix tutor.Mix) func() tea.Cmd {
	return func() tea.Cmd {
		req := tutor.GenerateRequest{
			SessionID: h.opts.SessionID,
			Count:     h.opts.Count,
			Types:     h.opts.Types,
			Mix:       mix,
		}
		src := quiz.FromStream(func(ctx context.Context) iter.Seq2[questiongen.Event, error] {
			return h.svc.StreamQuestions(ctx, req)
		})
		return router.Push(quiz.New(title, h.svc, h.opts.UserID, src))
	}
}

func (h *Screen) startTargeted() tea.Cmd {
	src := quiz.FromList(func(ctx context.Context) ([]*questiongen.Question, error) {
		return h.svc.TargetedPractice(ctx, h.opts.UserID, h.opts.SessionID)
	})
	return router.Push(quiz.New("Weak spots", h.svc, h.opts.UserID, src))
}

func (h *Screen) Init() tea.Cmd {
	return h.loadStats()
}

// Refresh reloads the stats line when a round ends.
func (h *Screen) Refresh() tea.Cmd {
	return h.loadStats()
}

func (h *Screen) loadStats() tea.Cmd {
	svc, user := h.svc, h.opts.UserID
	return func() tea.Msg {
		stats, err := svc.Statistics(context.Background(), user)
		return statsMsg{stats: stats, err: err}
	}
}

func (h *Screen) Title() string {
	return "Home"
}

func (h *Screen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if m, ok := msg.(statsMsg); ok {
		if m.err == nil {
			h.stats = m.stats
		}
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *Screen) View(width, height int) string {
	cw := min(width-4, 60)
	var sections []string

	sections = append(sections, theme.Centered(theme.Title, cw, "What would you like to do?"))
	if h.opts.Source != "" {
		sections = append(sections, theme.Centered(theme.Subtitle, cw, "Material: "+h.opts.Source))
	}
	sections = append(sections, theme.Centered(theme.Subtitle, cw, h.statsLine()))
	sections = append(sections, theme.Card.Width(cw).Render(strings.TrimRight(h.menu.View(), "\n")))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *Screen) statsLine() string {
	if h.stats == nil || h.stats.TotalAttempts == 0 {
		return "No answers yet. Start with a practice round."
	}
	return fmt.Sprintf("%d answered · %.0f%% correct · %d to review",
		h.stats.TotalAttempts, h.stats.OverallAccuracy*100, h.stats.UnmasteredWrong)
}
