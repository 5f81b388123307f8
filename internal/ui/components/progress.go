package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

// ProgressBar renders a ratio as a horizontal bar.
type ProgressBar struct {
	Label       string
	Percent     float64 // 0..1; values outside are clamped when drawn
	ShowPercent bool
	Width       int

	// Low, when positive, tints the percentage as a warning while
	// Percent is below it.
	Low float64
}

func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

// WithLow returns a copy that warns below low.
func (p ProgressBar) WithLow(low float64) ProgressBar {
	p.Low = low
	return p
}

const percentCols = len("  100%")

func (p ProgressBar) View() string {
	var b strings.Builder
	if p.Label != "" {
		b.WriteString(theme.Body.Render(p.Label) + "  ")
	}

	reserved := lipgloss.Width(b.String())
	if p.ShowPercent {
		reserved += percentCols
	}
	cells := max(p.Width-reserved, 4)
	filled := int(float64(cells) * p.Percent)
	filled = max(0, min(filled, cells))

	b.WriteString(theme.ProgressFilled.Render(strings.Repeat(" ", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", cells-filled)))

	if p.ShowPercent {
		style := theme.Subtitle
		if p.Low > 0 && p.Percent < p.Low {
			style = theme.Warning
		}
		b.WriteString(style.Render(fmt.Sprintf("  %d%%", int(p.Percent*100))))
	}
	return b.String()
}
