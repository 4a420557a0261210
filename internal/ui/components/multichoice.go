package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// MultiChoice is a multiple-choice selector. Number keys pick an option
// directly, arrows move the cursor and Enter picks the highlighted one.
// The correct option is unknown until Reveal is called.
type MultiChoice struct {
	Options      []string
	Selected     int
	Submitted    bool
	ChosenIndex  int
	CorrectIndex int
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{
		Options:      options,
		ChosenIndex:  -1,
		CorrectIndex: -1,
	}
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.choose(m.Selected)
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.Options) {
				m.choose(i)
			}
		}
	}

	return m, nil
}

func (m *MultiChoice) choose(i int) {
	if len(m.Options) == 0 {
		return
	}
	m.Selected = i
	m.ChosenIndex = i
	m.Submitted = true
}

// Chosen returns the picked option text.
func (m MultiChoice) Chosen() (string, bool) {
	if !m.Submitted || m.ChosenIndex < 0 || m.ChosenIndex >= len(m.Options) {
		return "", false
	}
	return m.Options[m.ChosenIndex], true
}

// Reveal marks which option was correct so View can color it.
func (m *MultiChoice) Reveal(correctIndex int) {
	m.CorrectIndex = correctIndex
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.CorrectIndex >= 0 && i == m.CorrectIndex:
			style = theme.Correct
		case m.CorrectIndex >= 0 && i == m.ChosenIndex:
			style = theme.Incorrect
		case m.Submitted && i == m.ChosenIndex:
			style = theme.Selected
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
