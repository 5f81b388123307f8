// Package report shows a learner's statistics, weak spots and study plan.
package report

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/tutor"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/layout"
	"github.com/abhisek/studyloop/internal/ui/theme"
	"github.com/abhisek/studyloop/internal/weakness"
)

// Service loads the data the report displays.
type Service interface {
	Statistics(ctx context.Context, userID string) (*store.UserStats, error)
	Weaknesses(ctx context.Context, userID string, windowDays int) (*weakness.Report, error)
	StudyPlan(ctx context.Context, userID string) (*tutor.PlanResult, error)
}

type loadedMsg struct {
	stats  *store.UserStats
	report *weakness.Report
	plan   *tutor.PlanResult
	err    error
}

// Screen renders the progress report.
type Screen struct {
	svc    Service
	userID string

	loading bool
	stats   *store.UserStats
	report  *weakness.Report
	plan    *tutor.PlanResult
	errMsg  string
}

var (
	_ router.Screen          = (*Screen)(nil)
	_ router.KeyHintProvider = (*Screen)(nil)
)

// New creates a report for userID.
func New(svc Service, userID string) *Screen {
	return &Screen{svc: svc, userID: userID, loading: true}
}

func (s *Screen) Init() tea.Cmd {
	svc, user := s.svc, s.userID
	return func() tea.Msg {
		var msg loadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() (err error) {
			msg.stats, err = svc.Statistics(ctx, user)
			return err
		})
		g.Go(func() (err error) {
			msg.report, err = svc.Weaknesses(ctx, user, weakness.DefaultWindowDays)
			return err
		})
		g.Go(func() (err error) {
			msg.plan, err = svc.StudyPlan(ctx, user)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (s *Screen) Title() string {
	return "Progress Report"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *Screen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.stats, s.report, s.plan = msg.stats, msg.report, msg.plan
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "enter", "q":
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return theme.Centered(theme.Incorrect, width, "\n\nError: "+s.errMsg)
	case s.loading:
		return theme.Centered(theme.Subtitle, width, "\n\nLoading report...")
	}

	cardWidth := min(width-4, 76)
	sections := []string{
		s.renderStats(cardWidth),
		s.renderWeaknesses(cardWidth),
		s.renderPlan(cardWidth),
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(sections, "\n"))
}

func (s *Screen) renderStats(w int) string {
	st := s.stats
	var b strings.Builder
	b.WriteString(theme.Title.Render("Statistics"))
	b.WriteString("\n")
	if st == nil || st.TotalAttempts == 0 {
		b.WriteString(theme.Hint.Render("No answers recorded yet."))
		return theme.Card.Width(w).Render(b.String())
	}
	fmt.Fprintf(&b, "%d answered · %d correct · %d to review\n", st.TotalAttempts, st.CorrectAttempts, st.UnmasteredWrong)
	b.WriteString(components.NewProgressBar("Accuracy", st.OverallAccuracy, true, w-6).WithLow(weakness.Threshold).View())
	for _, d := range st.ByDifficulty {
		b.WriteString("\n")
		b.WriteString(components.NewProgressBar(fmt.Sprintf("%-8s", d.Difficulty), d.Accuracy, true, w-6).WithLow(weakness.Threshold).View())
	}
	return theme.Card.Width(w).Render(b.String())
}

func (s *Screen) renderWeaknesses(w int) string {
	r := s.report
	var b strings.Builder
	b.WriteString(theme.Title.Render("Weak spots"))
	b.WriteString("\n")
	if r == nil || r.Status == weakness.StatusNoData {
		b.WriteString(theme.Hint.Render("Answer a few questions to see your weak spots."))
		return theme.Card.Width(w).Render(b.String())
	}
	if r.Trend.Message != "" {
		b.WriteString(theme.Subtitle.Render(r.Trend.Message))
		b.WriteString("\n")
	}
	if len(r.Weaknesses) == 0 {
		b.WriteString(theme.Correct.Render("Nothing below the bar. Keep it up."))
	}
	for _, wk := range r.Weaknesses {
		fmt.Fprintf(&b, "%s  %s\n", theme.Warning.Render(fmt.Sprintf("%5.1f%%", wk.Accuracy)),
			theme.Body.Render(fmt.Sprintf("%s (%d attempts)", wk.Tag, wk.TotalAttempts)))
	}
	for _, rec := range r.Recommendations {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("• " + rec))
	}
	return theme.Card.Width(w).Render(strings.TrimRight(b.String(), "\n"))
}

func (s *Screen) renderPlan(w int) string {
	if s.plan == nil || s.plan.Plan == nil {
		return ""
	}
	p := s.plan.Plan
	var b strings.Builder
	b.WriteString(theme.Title.Render("Study plan"))
	b.WriteString("  ")
	b.WriteString(theme.Subtitle.Render(p.Timeline))
	for _, g := range p.DailyGoals {
		fmt.Fprintf(&b, "\n%s %s", theme.Label.Render(fmt.Sprintf("Day %d", g.Day)), g.Focus)
	}
	return theme.Card.Width(w).Render(b.String())
}
