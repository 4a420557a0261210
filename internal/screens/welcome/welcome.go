// Package welcome asks who is taking the assessment when no user was
// given on the command line.
package welcome

import (
	"strings"
	"unicode"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
	"github.com/abhisek/adaptiq/internal/ui/theme"
)

const maxUserLen = 64

// WelcomeScreen shows the banner and a user name prompt, then hands over
// to the screen produced by homeFactory.
type WelcomeScreen struct {
	homeFactory  func(userID string) screen.Screen
	input        components.TextInput
	errMsg       string
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen.
func New(homeFactory func(userID string) screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
		input:       components.NewTextInput("your name", maxUserLen),
	}
}

func (w *WelcomeScreen) Title() string {
	return "Welcome"
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return w.input.Init()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok && kmsg.String() == "enter" {
		user := w.input.Value()
		if err := ValidateUserID(user); err != "" {
			w.errMsg = err
			return w, nil
		}
		return w, w.transition(user)
	}

	w.errMsg = ""
	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return w, cmd
}

// ValidateUserID returns a message describing what is wrong with id, or
// an empty string.
func ValidateUserID(id string) string {
	switch {
	case id == "":
		return "Please enter a name."
	case len(id) > maxUserLen:
		return "That name is too long."
	case strings.ContainsFunc(id, unicode.IsControl):
		return "Names cannot contain control characters."
	}
	return ""
}

func (w *WelcomeScreen) transition(user string) tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	home := w.homeFactory(user)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: home}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	sections := []string{
		RenderBanner(width),
		"",
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("adaptive skill assessment"),
		"",
		"",
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Who is taking the assessment?"),
		"",
		w.input.View(),
	}
	if w.errMsg != "" {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Error).Render(w.errMsg))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
