// Package result shows the outcome of a finished assessment.
package result

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// ResultScreen displays an assessment result.
type ResultScreen struct {
	result  *session.Result
	saveErr error
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a ResultScreen. saveErr, when set, is shown as a warning
// that the result could not be persisted.
func New(result *session.Result, saveErr error) *ResultScreen {
	return &ResultScreen{result: result, saveErr: saveErr}
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	return "Assessment Result"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Home"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if kmsg.String() == "enter" {
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	res := s.result
	if res == nil {
		return ""
	}

	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}
	cw := components.ContentWidth(width)
	divider := components.Center(
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)), width)
	section := func(b *strings.Builder, name string) {
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), name))
		b.WriteString("\n")
		b.WriteString(divider)
		b.WriteString("\n\n")
	}

	var b strings.Builder

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "Assessment complete"))
	b.WriteString("\n\n")

	if len(res.Responses) == 0 {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
			"No questions were answered. There may be nothing left in the catalog for you."))
		b.WriteString("\n")
		s.writeSaveErr(&b, width)
		return b.String()
	}

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.ScoreColor(res.Score)).Bold(true),
		fmt.Sprintf("Score %.0f%%", res.Score)))
	b.WriteString("\n")
	stats := fmt.Sprintf("%d/%d correct    Time %s    Best streak %d    Next level %s",
		res.Correct(), len(res.Responses), formatDuration(time.Duration(res.TimeSpentMs)*time.Millisecond),
		res.BestStreak, res.NextDifficulty)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), stats))
	b.WriteString("\n")

	section(&b, "Skills")
	labelWidth := 0
	for _, t := range res.SkillTallies {
		labelWidth = max(labelWidth, lipgloss.Width(t.SkillArea))
	}
	for _, t := range res.SkillTallies {
		bar := components.NewProgressBar(t.SkillArea, t.ScoreAfter/100, false, cw-18)
		bar.LabelWidth = labelWidth
		bar.Color = theme.ScoreColor(t.ScoreAfter)
		delta := lipgloss.NewStyle().Foreground(deltaColor(t.Delta())).
			Render(fmt.Sprintf("%5.1f %+5.1f", t.ScoreAfter, t.Delta()))
		b.WriteString(components.Center(bar.View()+"  "+delta, width))
		b.WriteString("\n")
	}

	if len(res.RecommendedAreas) > 0 {
		section(&b, "Recommended focus")
		for _, area := range res.RecommendedAreas {
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Warning), "• "+area))
			b.WriteString("\n")
		}
	}

	if len(res.Badges) > 0 {
		section(&b, "Badges")
		for _, bd := range res.Badges {
			line := fmt.Sprintf("%s %s: %s", bd.Kind.Icon(), bd.Name, bd.Kind.Description())
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent), line))
			b.WriteString("\n")
		}
	}

	s.writeSaveErr(&b, width)
	return b.String()
}

func (s *ResultScreen) writeSaveErr(b *strings.Builder, width int) {
	if s.saveErr == nil {
		return
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render("Result not saved: " + s.saveErr.Error()))
}

func deltaColor(d float64) color.Color {
	switch {
	case d > 0:
		return theme.Success
	case d < 0:
		return theme.Error
	}
	return theme.TextDim
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
