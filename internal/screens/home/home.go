// Package home is the main menu.
package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/screens/assessment"
	"github.com/abhisek/adaptiq/internal/screens/history"
	"github.com/abhisek/adaptiq/internal/screens/profile"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
)

type homeLoadedMsg struct {
	Profile adaptive.SkillProfile
	Err     error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps     assessment.Deps
	llmReady bool

	profile adaptive.SkillProfile
	loaded  bool
	errMsg  string
	menu    components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.StatusProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen. llmReady reports whether an LLM provider
// is configured; without one free-text answers get the neutral score.
func New(deps assessment.Deps, llmReady bool) *HomeScreen {
	h := &HomeScreen{
		deps:     deps,
		llmReady: llmReady,
		profile:  adaptive.NewSkillProfile(deps.UserID),
	}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

// Init reloads the profile; it runs again whenever the stack unwinds
// back here so the stats reflect the last assessment.
func (h *HomeScreen) Init() tea.Cmd {
	rec, user := h.deps.Recorder, h.deps.UserID
	return func() tea.Msg {
		if rec == nil {
			return homeLoadedMsg{Profile: adaptive.NewSkillProfile(user)}
		}
		p, err := rec.LoadProfile(context.Background(), user)
		return homeLoadedMsg{Profile: p, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(homeLoadedMsg); ok {
		h.loaded = true
		h.errMsg = ""
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
		} else {
			h.profile = msg.Profile
		}
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems())
		if selected < len(h.menu.Items) && !h.menu.Items[selected].Disabled {
			h.menu.Selected = selected
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Status() layout.Status {
	return layout.Status{User: h.deps.UserID}
}

// weakestArea returns the lowest-scoring skill area that still has
// questions in the catalog.
func (h *HomeScreen) weakestArea() (string, bool) {
	area, ok := adaptive.WeakestSkill(h.profile)
	if !ok || h.deps.Catalog == nil || len(h.deps.Catalog.Filter(area)) == 0 {
		return "", false
	}
	return area, true
}

// remaining counts catalog questions the learner has never answered.
func (h *HomeScreen) remaining() int {
	if h.deps.Catalog == nil {
		return 0
	}
	n := 0
	for _, q := range h.deps.Catalog.Filter(h.deps.SkillArea) {
		if !h.profile.HasAnswered(q.ID) {
			n++
		}
	}
	return n
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	push := func(s screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
		}
	}

	start := "All skill areas"
	if h.deps.SkillArea != "" {
		start = h.deps.SkillArea
	}
	items := []components.MenuItem{
		{Label: "START ASSESSMENT", Description: start, Action: func() tea.Cmd {
			return push(assessment.New(h.deps))()
		}},
	}

	weak, ok := h.weakestArea()
	focus := h.deps
	focus.SkillArea = weak
	items = append(items, components.MenuItem{
		Label:       "PRACTICE WEAKEST",
		Description: weak,
		Disabled:    !ok,
		Action: func() tea.Cmd {
			return push(assessment.New(focus))()
		},
	})

	var loader profile.Loader
	var source history.Source
	if h.deps.Recorder != nil {
		loader = h.deps.Recorder
		source = h.deps.Recorder
	}
	items = append(items,
		components.MenuItem{Label: "SKILL PROFILE", Action: func() tea.Cmd {
			return push(profile.New(loader, h.deps.UserID, h.deps.Config.RecommendBelow))()
		}},
		components.MenuItem{Label: "HISTORY", Disabled: source == nil, Action: func() tea.Cmd {
			return push(history.New(source, h.deps.UserID))()
		}},
		components.MenuItem{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)
	return items
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactHeight(height) || layout.IsCompactWidth(width)
	cw := components.ContentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		renderStatsBar(h.profile, h.remaining(), cw),
	}
	if !h.llmReady {
		sections = append(sections, renderLLMBanner(cw))
	}
	if h.errMsg != "" {
		sections = append(sections, renderError(h.errMsg, cw))
	}
	if compact {
		sections = append(sections, renderMenuCompact(h.menu, cw))
	} else {
		sections = append(sections, renderMenu(h.menu, cw))
	}

	return components.Center(strings.Join(sections, "\n\n"), width)
}
