package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// ContentWidth returns the uniform inner width used for stacked cards so
// they line up.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded-border card of the given width.
func Card(content string, cw int) string {
	return theme.Card.
		Width(cw).
		Render(content)
}

// Center places block horizontally in the middle of width.
func Center(block string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
