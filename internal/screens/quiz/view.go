package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/questiongen"
	"github.com/abhisek/studyloop/internal/ui/components"
	"github.com/abhisek/studyloop/internal/ui/theme"
)

// previewLines bounds the streamed output shown while waiting.
const previewLines = 6

func (s *Screen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return theme.Centered(theme.Incorrect, width, fmt.Sprintf("\n\n\nError: %s\n\nPress any key to go back.", s.errMsg))
	case s.confirmQuit:
		return renderQuitConfirm(width)
	case s.phase == phaseWaiting:
		return s.renderWaiting(width)
	}

	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n\n")
	b.WriteString(s.renderQuestion(width))
	b.WriteString("\n")
	if s.phase == phaseFeedback {
		b.WriteString(s.renderFeedback(width))
	} else if s.phase == phaseGrading {
		b.WriteString(theme.Centered(theme.Hint, width, "Grading..."))
	}
	return b.String()
}

func (s *Screen) renderInfoLine(width int) string {
	q := s.currentQuestion()
	left := theme.Label.Render(fmt.Sprintf("  %s · %s", typeLabel(q.Type()), q.Difficulty))

	total := max(s.total, len(s.questions))
	correct := 0
	for _, r := range s.results {
		if r.Result.IsCorrect {
			correct++
		}
	}
	right := theme.Subtitle.Render(fmt.Sprintf("Q %d/%d  ✓ %d", s.current+1, total, correct))

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line + "\n" + lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0)))
}

func (s *Screen) renderQuestion(width int) string {
	q := s.currentQuestion()
	textWidth := min(width-8, 76)

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Bold(true).Width(textWidth).Render(q.Content)))
	b.WriteString("\n\n")

	if q.Type() == questiongen.TypeShortAnswer {
		answer := s.input.View()
		if s.phase != phaseAnswering {
			answer = s.input.Value()
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+answer))
		b.WriteString("\n")
		return b.String()
	}

	correct := ""
	if s.phase == phaseFeedback {
		correct = q.CorrectAnswer
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View(correct)))
	return b.String()
}

func (s *Screen) renderFeedback(width int) string {
	var b strings.Builder
	q := s.currentQuestion()
	wrap := lipgloss.NewStyle().Width(min(width-8, 76))

	if s.gradeErr != nil {
		b.WriteString(theme.Centered(theme.Incorrect, width, "Could not grade this answer: "+s.gradeErr.Error()))
		b.WriteString("\n\n")
	} else if res := s.last.Result; res.IsCorrect {
		b.WriteString(theme.Centered(theme.Correct, width, fmt.Sprintf("%s  (%.0f)", res.Feedback, res.Score)))
		b.WriteString("\n\n")
	} else {
		b.WriteString(theme.Centered(theme.Incorrect, width, fmt.Sprintf("%s  (%.0f)", res.Feedback, res.Score)))
		b.WriteString("\n")
		b.WriteString(theme.Centered(theme.Subtitle, width, "Correct answer: "+q.CorrectAnswer))
		b.WriteString("\n\n")
		for _, m := range res.Mistakes {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, wrap.Foreground(theme.Accent).Render("• "+m)))
			b.WriteString("\n")
		}
	}

	explanation := q.Explanation
	if s.last != nil && s.last.Result.DetailedExplanation != "" {
		explanation = s.last.Result.DetailedExplanation
	}
	if explanation != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, wrap.Foreground(theme.Text).Render(explanation)))
		b.WriteString("\n\n")
	}
	if s.last != nil && s.last.Result.SuggestedImprovement != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, wrap.Inherit(theme.Hint).Render(s.last.Result.SuggestedImprovement)))
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Centered(theme.Subtitle, width, "Press any key to continue..."))
	return b.String()
}

func (s *Screen) renderWaiting(width int) string {
	var b strings.Builder
	b.WriteString("\n\n")

	total := max(s.total, 1)
	label := fmt.Sprintf("Generating question %d of %d", min(len(s.questions)+1, total), total)
	b.WriteString(theme.Centered(theme.Subtitle, width, label))
	b.WriteString("\n\n")
	bar := components.NewProgressBar("", float64(len(s.questions))/float64(total), true, min(width-8, 50))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	if s.preview != "" {
		lines := strings.Split(strings.TrimSpace(s.preview), "\n")
		if len(lines) > previewLines {
			lines = lines[len(lines)-previewLines:]
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Width(min(width-8, 76)).Render(strings.Join(lines, "\n"))))
	}
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(theme.Centered(theme.Body.Bold(true), width, "End this round early?"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(theme.Subtitle, width, "Answers so far are already saved."))
	b.WriteString("\n\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Success), width, "[Y] Yes, end round"))
	b.WriteString("\n")
	b.WriteString(theme.Centered(lipgloss.NewStyle().Foreground(theme.Primary), width, "[N] No, keep going"))
	return b.String()
}

func typeLabel(t questiongen.Type) string {
	switch t {
	case questiongen.TypeMultipleChoice:
		return "Multiple choice"
	case questiongen.TypeTrueFalse:
		return "True or false"
	case questiongen.TypeShortAnswer:
		return "Short answer"
	}
	return string(t)
}
