package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusOmitsZeroFields(t *testing.T) {
	assert.Empty(t, Status{}.render())

	out := Status{User: "ada"}.render()
	assert.Contains(t, out, "@ada")
	assert.NotContains(t, out, "Q ")
	assert.NotContains(t, out, "streak")

	out = Status{User: "ada", Difficulty: "hard", Streak: 3, Answered: 4, Total: 10}.render()
	for _, want := range []string{"Q 4/10", "hard", "streak 3", "@ada"} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Q 4/10"), strings.Index(out, "@ada"))
}

func TestRenderHeaderFitsWidth(t *testing.T) {
	header := RenderHeader("Assessment", Status{User: "ada", Difficulty: "easy"}, 100)
	assert.Contains(t, header, "adaptiq")
	assert.Contains(t, header, "Assessment")
	assert.Equal(t, 100, lipgloss.Width(header))
}

func TestRenderFrameHeight(t *testing.T) {
	header := RenderHeader("t", Status{}, 80)
	footer := RenderFooter([]KeyHint{{Key: "q", Description: "quit"}}, 80)
	frame := RenderFrame(header, "body", footer, 80, 30)
	assert.Equal(t, 30, lipgloss.Height(frame))
	assert.Contains(t, frame, "quit")
}

func TestSizeThresholds(t *testing.T) {
	assert.True(t, IsTooSmall(79, 24))
	assert.True(t, IsTooSmall(80, 23))
	assert.False(t, IsTooSmall(80, 24))

	assert.True(t, IsCompactWidth(89))
	assert.False(t, IsCompactWidth(90))
	assert.True(t, IsCompactHeight(19))
	assert.False(t, IsCompactHeight(20))
}
