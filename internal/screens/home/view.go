package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/screens/welcome"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// renderTitle returns the banner or a compact fallback.
func renderTitle(cw int, compact bool) string {
	width := cw
	if compact {
		width = 0
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(welcome.RenderBanner(width))
}

// renderStatsBar renders the learner's headline numbers in a bordered box.
func renderStatsBar(p adaptive.SkillProfile, remaining, cw int) string {
	hi := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := []string{
		hi.Render(fmt.Sprintf("%d", p.TotalAssessments)) + dim.Render(" assessments"),
		hi.Render(fmt.Sprintf("%d", len(p.Skills))) + dim.Render(" skills"),
		hi.Render(fmt.Sprintf("%d", remaining)) + dim.Render(" unseen questions"),
	}
	if area, ok := adaptive.WeakestSkill(p); ok {
		parts = append(parts, dim.Render("weakest ")+
			lipgloss.NewStyle().Foreground(theme.ScoreColor(p.Skills[area])).Render(area))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(strings.Join(parts, dim.Render("  ·  ")))
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

// renderMenu renders each menu item as a fixed-width button with the
// selected item's description underneath.
func renderMenu(m components.Menu, cw int) string {
	base := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	selectedBtn := base.
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Primary).
		BorderForeground(theme.Primary)
	normalBtn := base.
		Foreground(theme.Text).
		BorderForeground(theme.Border)
	disabledBtn := base.
		Foreground(theme.TextDim).
		BorderForeground(theme.Border)

	var buttons []string
	for i, item := range m.Items {
		switch {
		case item.Disabled:
			buttons = append(buttons, disabledBtn.Render(item.Label))
		case i == m.Selected:
			buttons = append(buttons, selectedBtn.Render("▸ "+item.Label))
		default:
			buttons = append(buttons, normalBtn.Render(item.Label))
		}
	}
	block := strings.Join(buttons, "\n")
	if m.Selected < len(m.Items) && m.Items[m.Selected].Description != "" {
		block += "\n" + theme.Hint.Render(m.Items[m.Selected].Description)
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(block)
}

// renderMenuCompact renders menu items as plain lines for small terminals.
func renderMenuCompact(m components.Menu, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(m.View())
}

// renderLLMBanner warns that free-text answers cannot be graded.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ No LLM configured: free-text answers get a neutral score (see adaptiq --help)")
}

func renderError(msg string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Error).
		Width(cw).
		Align(lipgloss.Center).
		Render("Could not load profile: " + msg)
}
