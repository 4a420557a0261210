// Package history lists a learner's past assessment results.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

const historyLimit = 50

// Source fetches past results. session.Recorder satisfies it.
type Source interface {
	History(ctx context.Context, userID string, limit int) ([]session.Result, error)
}

type historyLoadedMsg struct {
	Results []session.Result
	Err     error
}

// HistoryScreen displays past assessments, newest first.
type HistoryScreen struct {
	source   Source
	userID   string
	results  []session.Result
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(source Source, userID string) *HistoryScreen {
	return &HistoryScreen{
		source:   source,
		userID:   userID,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	source, user := s.source, s.userID
	return func() tea.Msg {
		if source == nil {
			return historyLoadedMsg{}
		}
		results, err := source.History(context.Background(), user, historyLimit)
		return historyLoadedMsg{Results: results, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.results = msg.Results
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.results)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.results) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No assessments yet. Take your first one!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, res := range s.results {
		dateStr := res.CompletedAt.Local().Format("Jan 02, 2006 15:04")
		secs := res.TimeSpentMs / 1000
		durationStr := fmt.Sprintf("%d:%02d", secs/60, secs%60)

		badgeStr := ""
		if n := len(res.Badges); n > 0 {
			badgeStr = fmt.Sprintf("  %d badge", n)
			if n > 1 {
				badgeStr += "s"
			}
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %s  %2d questions  %3.0f%%  next %-6s%s",
			prefix, dateStr, durationStr, len(res.Responses), res.Score, res.NextDifficulty, badgeStr)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(renderDetails(res, width))
		}
	}

	return b.String()
}

// renderDetails lists per-skill tallies and badges of one result.
func renderDetails(res session.Result, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	var lines []string
	for _, t := range res.SkillTallies {
		lines = append(lines, fmt.Sprintf("    %s  %d/%d correct  %.1f → %.1f",
			t.SkillArea, t.Correct, t.Attempted, t.ScoreBefore, t.ScoreAfter))
	}
	for _, bd := range res.Badges {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Accent).
			Render(fmt.Sprintf("    %s %s", bd.Kind.Icon(), bd.Name)))
	}
	if len(res.RecommendedAreas) > 0 {
		lines = append(lines, fmt.Sprintf("    Recommended: %s", strings.Join(res.RecommendedAreas, ", ")))
	}
	if len(lines) == 0 {
		lines = append(lines, "    No details recorded")
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render(l)))
		b.WriteString("\n")
	}
	return b.String()
}
