package home

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/catalog"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screens/assessment"
	"github.com/abhisek/adaptiq/internal/screens/history"
	"github.com/abhisek/adaptiq/internal/screens/profile"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testDeps(t *testing.T) assessment.Deps {
	t.Helper()
	deps, _ := testDepsWithStore(t)
	return deps
}

func testDepsWithStore(t *testing.T) (assessment.Deps, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "adaptiq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return assessment.Deps{
		UserID:   "u1",
		Catalog:  catalog.Default(),
		Engine:   adaptive.NewEngine(adaptive.DefaultParams()),
		Config:   session.DefaultConfig(),
		Recorder: session.NewStoreRecorder(st),
	}, st
}

func selectAndEnter(t *testing.T, h *HomeScreen, index int) tea.Msg {
	t.Helper()
	h.menu.Selected = index
	_, cmd := h.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	return cmd()
}

func TestHomeScreen_MenuBeforeLoad(t *testing.T) {
	h := New(testDeps(t), true)
	require.Len(t, h.menu.Items, 5)
	assert.True(t, h.menu.Items[1].Disabled, "weakest area needs a profile")
	assert.False(t, h.menu.Items[2].Disabled)
	assert.False(t, h.menu.Items[3].Disabled)

	view := h.View(120, 40)
	assert.Contains(t, view, "START ASSESSMENT")
	assert.NotContains(t, view, "No LLM configured")
}

func TestHomeScreen_StartPushesAssessment(t *testing.T) {
	h := New(testDeps(t), true)
	msg, ok := selectAndEnter(t, h, 0).(router.PushScreenMsg)
	require.True(t, ok)
	assert.IsType(t, &assessment.AssessmentScreen{}, msg.Screen)
}

func TestHomeScreen_ProfileAndHistory(t *testing.T) {
	h := New(testDeps(t), true)

	msg := selectAndEnter(t, h, 2).(router.PushScreenMsg)
	assert.IsType(t, &profile.ProfileScreen{}, msg.Screen)

	msg = selectAndEnter(t, h, 3).(router.PushScreenMsg)
	assert.IsType(t, &history.HistoryScreen{}, msg.Screen)
}

func TestHomeScreen_QuitItem(t *testing.T) {
	h := New(testDeps(t), true)
	assert.IsType(t, tea.QuitMsg{}, selectAndEnter(t, h, 4))
}

func TestHomeScreen_LoadedProfileEnablesWeakest(t *testing.T) {
	deps := testDeps(t)
	area := deps.Catalog.SkillAreas()[0]

	p := adaptive.NewSkillProfile("u1")
	p.Skills[area] = 20
	p.TotalAssessments = 3
	h := New(deps, false)
	h.Update(homeLoadedMsg{Profile: p})

	require.False(t, h.menu.Items[1].Disabled)
	assert.Equal(t, area, h.menu.Items[1].Description)

	view := h.View(120, 40)
	assert.Contains(t, view, "3")
	assert.Contains(t, view, "assessments")
	assert.Contains(t, view, "No LLM configured")

	msg := selectAndEnter(t, h, 1).(router.PushScreenMsg)
	assert.IsType(t, &assessment.AssessmentScreen{}, msg.Screen)
}

func TestHomeScreen_InitLoadsStoredProfile(t *testing.T) {
	deps, st := testDepsWithStore(t)
	p := adaptive.NewSkillProfile("u1")
	p.AnsweredQuestions = []string{deps.Catalog.Questions()[0].ID}
	p.TotalAssessments = 1
	require.NoError(t, st.ProfileRepo().Save(context.Background(), p))

	h := New(deps, true)
	h.Update(h.Init()())
	require.True(t, h.loaded)
	assert.Equal(t, 1, h.profile.TotalAssessments)
	assert.Equal(t, deps.Catalog.Len()-1, h.remaining())
}

func TestHomeScreen_NoRecorderDisablesHistory(t *testing.T) {
	deps := testDeps(t)
	deps.Recorder = nil
	h := New(deps, true)
	assert.True(t, h.menu.Items[3].Disabled)

	h.Update(h.Init()())
	assert.True(t, h.loaded)
	assert.Empty(t, h.errMsg)
}
