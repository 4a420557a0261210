package assessment

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

const textWidth = 76

func centered(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}

// wrapped renders a left-aligned paragraph centered as a block.
func wrapped(width int, style lipgloss.Style, text string) string {
	return components.Center(style.Width(min(width-8, textWidth)).Render(text), width)
}

// renderQuestionView renders the active question display.
func (s *AssessmentScreen) renderQuestionView(width int) string {
	q := s.question
	if q == nil {
		return renderLoading(width, "Choosing a question...")
	}

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + q.SkillArea)

	right := []string{
		lipgloss.NewStyle().Foreground(theme.DifficultyColor(string(q.Difficulty))).Render(string(q.Difficulty)),
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(typeLabel(q.Type)),
	}
	if q.TimeLimit > 0 {
		remaining := max(q.TimeLimit-s.now().Sub(s.shownAt), 0)
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if remaining <= 10*time.Second {
			style = style.Foreground(theme.Warning).Bold(true)
		}
		right = append(right, style.Render(formatClock(remaining)))
	}
	infoRight := strings.Join(right, "   ")

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	b.WriteString(wrapped(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), q.Content))
	b.WriteString("\n\n")

	if s.mcActive {
		b.WriteString(components.Center(s.choices.View(), width))
		b.WriteString("\n")
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
			fmt.Sprintf("Select (1-%d) or use arrows + Enter", len(q.Choices))))
	} else {
		b.WriteString(wrapped(width, lipgloss.NewStyle(), "Answer: "+s.input.View()))
	}

	for i := 0; i < s.hintsShown && i < len(q.Hints); i++ {
		b.WriteString("\n\n")
		b.WriteString(wrapped(width, theme.Hint, fmt.Sprintf("Hint %d: %s", i+1, q.Hints[i])))
	}

	if s.grading {
		b.WriteString("\n\n")
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Grading your answer..."))
	}

	return b.String()
}

// renderFeedback renders the feedback overlay.
func (s *AssessmentScreen) renderFeedback(width int) string {
	out := s.outcome
	q := s.question
	if out == nil || q == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	if out.Response.Correct {
		b.WriteString(centered(width, theme.Correct, "Correct!"))
	} else {
		b.WriteString(centered(width, theme.Incorrect, "Not quite"))
	}
	b.WriteString("\n")

	if q.Type != adaptive.TypeMultipleChoice {
		score := fmt.Sprintf("Score %.2f", out.Evaluation.Score)
		if out.Evaluation.Fallback {
			score += " (grader unavailable, neutral score given)"
		}
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), score))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.mcActive {
		b.WriteString(components.Center(s.choices.View(), width))
		b.WriteString("\n")
	} else if !out.Response.Correct {
		b.WriteString(wrapped(width, lipgloss.NewStyle().Foreground(theme.TextDim),
			"Reference answer: "+q.ReferenceAnswer))
		b.WriteString("\n\n")
	}

	if fb := out.Feedback; fb != nil {
		b.WriteString(wrapped(width, lipgloss.NewStyle().Foreground(theme.Text), fb.Summary))
		b.WriteString("\n")
		for _, p := range fb.MissingPoints {
			b.WriteString(wrapped(width, lipgloss.NewStyle().Foreground(theme.Warning), "• "+p))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if q.Explanation != "" {
		b.WriteString(wrapped(width, lipgloss.NewStyle().Foreground(theme.Text), q.Explanation))
		b.WriteString("\n\n")
	}

	skill := fmt.Sprintf("%s  %.1f → %.1f", out.Response.SkillArea, out.ScoreBefore, out.ScoreAfter)
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.ScoreColor(out.ScoreAfter)), skill))
	b.WriteString("\n")

	if out.DifficultyAfter != out.DifficultyBefore {
		label := "Stepping up"
		if out.DifficultyAfter.Less(out.DifficultyBefore) {
			label = "Easing off"
		}
		b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
			fmt.Sprintf("%s: %s → %s", label, out.DifficultyBefore, out.DifficultyAfter)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	next := "Press any key to continue..."
	if out.Complete {
		next = "Press any key to see your results..."
	}
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), next))

	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "End assessment early?"))
	b.WriteString("\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "Your answers so far will be saved."))
	b.WriteString("\n\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Success), "[Y] Yes, end assessment"))
	b.WriteString("\n")
	b.WriteString(centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}

// renderLoading renders a waiting message.
func renderLoading(width int, text string) string {
	return centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n\n"+text)
}

// renderError renders an error message.
func renderError(width int, errMsg string) string {
	return centered(width, lipgloss.NewStyle().Foreground(theme.Error),
		fmt.Sprintf("\n\n\nError: %s\n\nPress any key to go back.", errMsg))
}

func typeLabel(t adaptive.QuestionType) string {
	switch t {
	case adaptive.TypeMultipleChoice:
		return "multiple choice"
	case adaptive.TypePractical:
		return "practical"
	}
	return "free text"
}

func formatClock(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
