package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Color palette: muted terminal tones with one accent per signal.
var (
	Primary   = lipgloss.Color("#60A5FA") // Sky Blue
	Secondary = lipgloss.Color("#2DD4BF") // Teal
	Accent    = lipgloss.Color("#FBBF24") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F97316") // Orange
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// DifficultyColor maps a difficulty name to its badge color.
func DifficultyColor(difficulty string) color.Color {
	switch difficulty {
	case "easy":
		return Success
	case "medium":
		return Accent
	case "hard":
		return Error
	}
	return TextDim
}

// ScoreColor grades a 0..100 skill score.
func ScoreColor(score float64) color.Color {
	switch {
	case score >= 80:
		return Success
	case score >= 50:
		return Accent
	default:
		return Warning
	}
}

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)
