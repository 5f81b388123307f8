// Package review lists the questions a learner got wrong and has not yet
// mastered.
package review

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/router"
	"github.com/abhisek/studyloop/internal/store"
	"github.com/abhisek/studyloop/internal/ui/layout"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

// Service loads the wrong-question ledger.
type Service interface {
	WrongQuestions(ctx context.Context, userID string, limit int, tags []string) ([]store.WrongQuestion, error)
}

type loadedMsg struct {
	entries []store.WrongQuestion
	err     error
}

// Screen shows one ledger entry at a time with a position indicator.
type Screen struct {
	svc    Service
	userID string

	loading bool
	entries []store.WrongQuestion
	cursor  int
	errMsg  string
}

var (
	_ router.Screen          = (*Screen)(nil)
	_ router.KeyHintProvider = (*Screen)(nil)
)

// New creates the review screen for userID.
func New(svc Service, userID string) *Screen {
	return &Screen{svc: svc, userID: userID, loading: true}
}

func (s *Screen) Init() tea.Cmd {
	svc, user := s.svc, s.userID
	return func() tea.Msg {
		entries, err := svc.WrongQuestions(context.Background(), user, store.DefaultWrongLimit, nil)
		return loadedMsg{entries: entries, err: err}
	}
}

func (s *Screen) Title() string {
	return "Review"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if len(s.entries) < 2 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "←/→", Description: "Previous/Next"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.entries = msg.entries
		s.cursor = 0
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, router.Pop
		case "right", "l", "down", "j", "space", "enter":
			if s.cursor < len(s.entries)-1 {
				s.cursor++
			}
		case "left", "h", "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		}
	}
	return s, nil
}

// Selected returns the entry on screen, or nil when there is none.
func (s *Screen) Selected() *store.WrongQuestion {
	if s.cursor >= len(s.entries) {
		return nil
	}
	return &s.entries[s.cursor]
}

func (s *Screen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return theme.Centered(theme.Incorrect, width, "\n\nError: "+s.errMsg)
	case s.loading:
		return theme.Centered(theme.Subtitle, width, "\n\nLoading...")
	case len(s.entries) == 0:
		return theme.Centered(theme.Correct, width, "\n\nNothing to review. Nice work.")
	}

	cw := min(width-4, 76)
	e := s.Selected()

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d · missed %d time(s) · %s",
		s.cursor+1, len(s.entries), e.WrongCount, e.Difficulty)))
	b.WriteString("\n\n")
	b.WriteString(theme.Title.Width(cw - 4).Render(e.QuestionText))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", theme.Label.Render("You said:"), theme.Incorrect.Render(e.UserAnswer))
	fmt.Fprintf(&b, "%s %s\n", theme.Label.Render("Answer:  "), theme.Correct.Render(e.CorrectAnswer))
	for _, m := range e.Mistakes {
		b.WriteString(theme.Warning.Render("• " + m))
		b.WriteString("\n")
	}
	if e.DetailedExplanation != "" {
		b.WriteString("\n")
		b.WriteString(theme.Body.Width(cw - 4).Render(e.DetailedExplanation))
		b.WriteString("\n")
	}
	if e.SuggestedImprovement != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Width(cw - 4).Render(e.SuggestedImprovement))
		b.WriteString("\n")
	}
	if len(e.Tags) > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Tags: " + strings.Join(e.Tags, ", ")))
	}

	card := theme.Card.Width(cw).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, card)
}
