// Package summary shows how a finished round went.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/samber/lo"

	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/tutor"
	"github.com/abhisek/studyloop/internal/ui/layout"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

// Screen displays the results of one round.
type Screen struct {
	results []*tutor.Submission
}

var (
	_ router.Screen          = (*Screen)(nil)
	_ router.KeyHintProvider = (*Screen)(nil)
)

// New creates a summary of results.
func New(results []*tutor.Submission) *Screen {
	return &Screen{results: results}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "Round Summary"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *Screen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

// Correct counts the correct answers.
func (s *Screen) Correct() int {
	return lo.CountBy(s.results, func(r *tutor.Submission) bool { return r.Result.IsCorrect })
}

// AverageScore is the mean score across the round.
func (s *Screen) AverageScore() float64 {
	if len(s.results) == 0 {
		return 0
	}
	return lo.SumBy(s.results, func(r *tutor.Submission) float64 { return r.Result.Score }) / float64(len(s.results))
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Centered(theme.Title, width, "Round complete"))
	b.WriteString("\n\n")

	total, correct := len(s.results), s.Correct()
	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	style := theme.Correct
	if accuracy < 0.7 {
		style = theme.Warning
	}
	b.WriteString(theme.Centered(style, width,
		fmt.Sprintf("%d of %d correct · average score %.0f", correct, total, s.AverageScore())))
	b.WriteString("\n\n")

	rowWidth := min(width-8, 76)
	var rows []string
	for i, r := range s.results {
		mark := theme.Correct.Render("✓")
		if !r.Result.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		text := r.Question.Content
		if limit := rowWidth - 14; limit > 3 && lipgloss.Width(text) > limit {
			text = string([]rune(text)[:limit-3]) + "..."
		}
		rows = append(rows, fmt.Sprintf("%s %2d. %s  %s", mark, i+1, theme.Body.Render(text),
			theme.Subtitle.Render(fmt.Sprintf("%.0f", r.Result.Score))))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Card.Width(rowWidth).Render(strings.Join(rows, "\n"))))

	if missed := s.missedTags(); len(missed) > 0 {
		b.WriteString("\n\n")
		b.WriteString(theme.Centered(theme.Hint, width, "Review: "+strings.Join(missed, ", ")))
	}
	return b.String()
}

// missedTags lists the tags of wrongly answered questions.
func (s *Screen) missedTags() []string {
	wrong := lo.Filter(s.results, func(r *tutor.Submission, _ int) bool { return !r.Result.IsCorrect })
	return lo.Uniq(lo.FlatMap(wrong, func(r *tutor.Submission, _ int) []string { return r.Question.Tags }))
}
