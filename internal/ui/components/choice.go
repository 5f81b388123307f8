package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyloop/internal/ui/theme"
)

// Choice picks one of a fixed list of options. Options are numbered from
// 1; pressing a number selects and submits in one step.
type Choice struct {
	Options   []string
	Selected  int
	Submitted bool
}

// NewChoice creates a choice over options.
func NewChoice(options []string) Choice {
	return Choice{Options: options}
}

// Update handles arrows, j/k, number keys and enter.
func (c Choice) Update(msg tea.Msg) (Choice, tea.Cmd) {
	if c.Submitted {
		return c, nil
	}
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return c, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Options)-1 {
			c.Selected++
		}
	case "enter":
		c.Submitted = len(c.Options) > 0
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(c.Options) {
				c.Selected = i
				c.Submitted = true
			}
		}
	}
	return c, nil
}

// Value returns the selected option.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected]
}

// View renders the options. After submission the correct option is
// highlighted green and a wrong pick red.
func (c Choice) View(correct string) string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if i == c.Selected && !c.Submitted {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, opt)

		switch {
		case c.Submitted && correct != "" && strings.EqualFold(opt, correct):
			b.WriteString(theme.Correct.Render(line))
		case c.Submitted && i == c.Selected:
			b.WriteString(theme.Incorrect.Render(line))
		case c.Submitted:
			b.WriteString(theme.Hint.Render(line))
		case i == c.Selected:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
