// Package profile shows a learner's skill profile.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

// Loader fetches a profile. session.Recorder satisfies it.
type Loader interface {
	LoadProfile(ctx context.Context, userID string) (adaptive.SkillProfile, error)
}

type profileLoadedMsg struct {
	Profile adaptive.SkillProfile
	Err     error
}

// ProfileScreen displays per-skill scores and assessment statistics.
type ProfileScreen struct {
	loader         Loader
	userID         string
	recommendBelow float64

	profile adaptive.SkillProfile
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)

// New creates a ProfileScreen. Skills scoring under recommendBelow are
// flagged for study.
func New(loader Loader, userID string, recommendBelow float64) *ProfileScreen {
	return &ProfileScreen{loader: loader, userID: userID, recommendBelow: recommendBelow}
}

func (s *ProfileScreen) Init() tea.Cmd {
	loader, user := s.loader, s.userID
	return func() tea.Msg {
		if loader == nil {
			return profileLoadedMsg{Profile: adaptive.NewSkillProfile(user)}
		}
		p, err := loader.LoadProfile(context.Background(), user)
		return profileLoadedMsg{Profile: p, Err: err}
	}
}

func (s *ProfileScreen) Title() string {
	return "Skill Profile"
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.profile = msg.Profile
		}
		s.loaded = true
	case tea.KeyMsg:
		if msg.String() == "esc" || msg.String() == "q" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *ProfileScreen) View(width, height int) string {
	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}
	switch {
	case s.errMsg != "":
		return center(lipgloss.NewStyle().Foreground(theme.Error), "\n\nError: "+s.errMsg)
	case !s.loaded:
		return center(lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Loading profile...")
	case len(s.profile.Skills) == 0:
		return center(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true),
			"\n\n  No skills assessed yet. Take an assessment first!")
	}

	p := s.profile
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), p.UserID))
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), s.statsLine()))
	b.WriteString("\n\n")

	areas := make([]string, 0, len(p.Skills))
	labelWidth := 0
	for area := range p.Skills {
		areas = append(areas, area)
		labelWidth = max(labelWidth, lipgloss.Width(area))
	}
	sort.Strings(areas)

	var rows []string
	for _, area := range areas {
		score := p.Skills[area]
		bar := components.NewProgressBar(area, score/100, false, cw-10)
		bar.LabelWidth = labelWidth
		bar.Color = theme.ScoreColor(score)
		mark := " "
		if score < s.recommendBelow {
			mark = lipgloss.NewStyle().Foreground(theme.Warning).Render("!")
		}
		rows = append(rows, fmt.Sprintf("%s  %5.1f %s", bar.View(), score, mark))
	}
	b.WriteString(components.Center(strings.Join(rows, "\n"), width))
	b.WriteString("\n\n")

	if len(p.QuestionTypeCounts) > 0 {
		types := make([]string, 0, len(p.QuestionTypeCounts))
		for t, n := range p.QuestionTypeCounts {
			types = append(types, fmt.Sprintf("%s %d", t, n))
		}
		sort.Strings(types)
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), strings.Join(types, "   ")))
		b.WriteString("\n")
	}
	if weakest, ok := adaptive.WeakestSkill(p); ok && p.Skills[weakest] < s.recommendBelow {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Warning), "Focus next on "+weakest))
	}

	return b.String()
}

func (s *ProfileScreen) statsLine() string {
	p := s.profile
	last := "never"
	if p.LastAssessmentAt != nil {
		last = p.LastAssessmentAt.Local().Format("Jan 02, 2006")
	}
	avg := time.Duration(p.AverageResponseTimeMs * float64(time.Millisecond))
	return fmt.Sprintf("%d assessments    %d questions answered    avg %s per answer    last %s",
		p.TotalAssessments, len(p.AnsweredQuestions), avg.Round(100*time.Millisecond), last)
}
