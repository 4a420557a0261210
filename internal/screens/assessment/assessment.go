// Package assessment is the screen that runs one adaptive assessment.
package assessment

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/catalog"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/router"
	"github.com/abhisek/adaptiq/internal/screen"
	"github.com/abhisek/adaptiq/internal/screens/result"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/ui/components"
	"github.com/abhisek/adaptiq/internal/ui/layout"
)

// Deps are the collaborators an assessment needs. Recorder and Explainer
// are optional; without a recorder nothing is persisted.
type Deps struct {
	UserID    string
	SkillArea string
	Catalog   *catalog.Catalog
	Engine    *adaptive.Engine
	Grader    session.Grader
	Explainer session.Explainer
	Config    session.Config
	Recorder  *session.Recorder
	Log       *logger.Logger
}

const answerLimit = 1000

// AssessmentScreen implements screen.Screen for an active assessment.
type AssessmentScreen struct {
	deps Deps
	now  func() time.Time

	sess       *session.Session
	question   *adaptive.Question
	shownAt    time.Time
	hintsShown int

	choices  components.MultiChoice
	input    components.TextInput
	mcActive bool

	outcome            *session.Outcome
	grading            bool
	showingFeedback    bool
	showingQuitConfirm bool
	finishing          bool
	errMsg             string
}

var _ screen.Screen = (*AssessmentScreen)(nil)
var _ screen.KeyHintProvider = (*AssessmentScreen)(nil)
var _ screen.StatusProvider = (*AssessmentScreen)(nil)
var _ screen.EscHandler = (*AssessmentScreen)(nil)

// New creates an AssessmentScreen. The session is built in Init.
func New(deps Deps) *AssessmentScreen {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &AssessmentScreen{
		deps:  deps,
		now:   time.Now,
		input: components.NewTextInput("Type your answer...", answerLimit),
	}
}

func (s *AssessmentScreen) Init() tea.Cmd {
	return tea.Batch(
		s.start(),
		s.input.Init(),
		tickCmd(),
	)
}

func (s *AssessmentScreen) Title() string {
	return "Assessment"
}

func (s *AssessmentScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.sess == nil || s.grading || s.finishing:
		return nil
	case s.showingQuitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "End assessment"},
			{Key: "N", Description: "Keep going"},
		}
	case s.showingFeedback:
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
		}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
	if s.mcActive {
		hints = append(hints, layout.KeyHint{Key: "1-9", Description: "Choose"})
	}
	if s.question != nil && s.hintsShown < len(s.question.Hints) {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Hint"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

// Status reports live session state for the header.
func (s *AssessmentScreen) Status() layout.Status {
	if s.sess == nil {
		return layout.Status{User: s.deps.UserID}
	}
	answered, total := s.sess.Progress()
	return layout.Status{
		User:       s.deps.UserID,
		Difficulty: string(s.sess.Difficulty()),
		Streak:     s.sess.Streak(),
		Answered:   answered,
		Total:      total,
	}
}

// HandlesEsc keeps the app from popping the screen mid-assessment; Esc
// opens the quit confirmation instead.
func (s *AssessmentScreen) HandlesEsc() bool {
	return s.sess != nil && s.errMsg == "" && !s.finishing
}

func (s *AssessmentScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.sess == nil:
		return renderLoading(width, "Preparing your assessment...")
	case s.finishing:
		return renderLoading(width, "Saving your results...")
	case s.showingQuitConfirm:
		return renderQuitConfirm(width)
	case s.showingFeedback:
		return s.renderFeedback(width)
	}
	return s.renderQuestionView(width)
}

func (s *AssessmentScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case gradedMsg:
		return s.handleGraded(msg)

	case finishedMsg:
		return s.handleFinished(msg)

	case timerTickMsg:
		return s.handleTimerTick()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Forward to input if active.
	if s.answering() && !s.mcActive {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	return s, nil
}

// answering reports whether a question is on screen and awaiting input.
func (s *AssessmentScreen) answering() bool {
	return s.question != nil && !s.grading && !s.showingFeedback &&
		!s.showingQuitConfirm && !s.finishing && s.errMsg == ""
}

// start loads the learner profile and picks the first question.
func (s *AssessmentScreen) start() tea.Cmd {
	deps := s.deps
	return func() tea.Msg {
		if deps.Catalog == nil {
			return startedMsg{Err: errors.New("no question catalog loaded")}
		}
		questions := deps.Catalog.Filter(deps.SkillArea)
		if len(questions) == 0 {
			return startedMsg{Err: errors.New("no questions for skill area " + deps.SkillArea)}
		}

		profile := adaptive.NewSkillProfile(deps.UserID)
		if deps.Recorder != nil {
			p, err := deps.Recorder.LoadProfile(context.Background(), deps.UserID)
			if err != nil {
				return startedMsg{Err: err}
			}
			profile = p
		}

		opts := []session.Option{session.WithLogger(deps.Log)}
		if deps.Explainer != nil {
			opts = append(opts, session.WithExplainer(deps.Explainer))
		}
		sess, err := session.New(deps.Config, deps.Engine, deps.Grader, questions, profile, opts...)
		if err != nil {
			return startedMsg{Err: err}
		}
		q, err := sess.Start()
		if err != nil {
			return startedMsg{Err: err}
		}
		return startedMsg{Session: sess, Question: q}
	}
}

func (s *AssessmentScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.sess = msg.Session
	if msg.Question == nil {
		return s.beginFinish(false)
	}
	return s, s.show(msg.Question)
}

// show puts q on screen with the matching input widget.
func (s *AssessmentScreen) show(q *adaptive.Question) tea.Cmd {
	s.question = q
	s.shownAt = s.now()
	s.hintsShown = 0
	s.outcome = nil

	if q.Type == adaptive.TypeMultipleChoice {
		s.mcActive = true
		s.choices = components.NewMultiChoice(q.Choices)
		return nil
	}
	s.mcActive = false
	s.input = components.NewTextInput("Type your answer...", answerLimit)
	return s.input.Init()
}

func (s *AssessmentScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state: any key goes back.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.sess == nil || s.grading || s.finishing {
		return s, nil
	}

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			s.showingQuitConfirm = false
			return s.beginFinish(true)
		case "n", "N", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	// Feedback overlay: any key continues.
	if s.showingFeedback {
		return s.advance()
	}

	if s.question == nil {
		return s, nil
	}

	switch key {
	case "esc":
		s.showingQuitConfirm = true
		return s, nil
	case "tab":
		if s.hintsShown < len(s.question.Hints) {
			s.hintsShown++
		}
		return s, nil
	}

	if s.mcActive {
		s.choices, _ = s.choices.Update(msg)
		if answer, ok := s.choices.Chosen(); ok {
			return s.submit(answer)
		}
		return s, nil
	}

	if key == "enter" {
		answer := s.input.Value()
		if answer == "" {
			return s, nil
		}
		return s.submit(answer)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// submit grades answer in the background.
func (s *AssessmentScreen) submit(answer string) (screen.Screen, tea.Cmd) {
	s.grading = true
	sess := s.sess
	elapsed := s.now().Sub(s.shownAt)
	return s, func() tea.Msg {
		outcome, err := sess.Submit(context.Background(), answer, elapsed)
		return gradedMsg{Outcome: outcome, Err: err}
	}
}

func (s *AssessmentScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	s.grading = false
	if msg.Err != nil {
		if errors.Is(msg.Err, session.ErrSessionComplete) {
			return s.beginFinish(false)
		}
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	s.outcome = msg.Outcome
	s.showingFeedback = true
	if s.mcActive && s.question != nil {
		s.choices.Reveal(grading.ChoiceIndex(*s.question))
	}
	return s, nil
}

// advance leaves the feedback overlay for the next question or the result.
func (s *AssessmentScreen) advance() (screen.Screen, tea.Cmd) {
	s.showingFeedback = false
	out := s.outcome
	if out == nil || out.Complete || out.Next == nil {
		return s.beginFinish(false)
	}
	return s, s.show(out.Next)
}

func (s *AssessmentScreen) handleTimerTick() (screen.Screen, tea.Cmd) {
	if s.finishing || s.errMsg != "" {
		return s, nil
	}
	if s.answering() && s.question.TimeLimit > 0 && s.now().Sub(s.shownAt) >= s.question.TimeLimit {
		answer := s.input.Value()
		if s.mcActive {
			answer, _ = s.choices.Chosen()
		}
		_, submit := s.submit(answer)
		return s, tea.Batch(submit, tickCmd())
	}
	return s, tickCmd()
}

// beginFinish ends the session and persists the result in the
// background. early marks a learner-requested stop.
func (s *AssessmentScreen) beginFinish(early bool) (screen.Screen, tea.Cmd) {
	if s.finishing {
		return s, nil
	}
	s.finishing = true
	sess := s.sess
	rec := s.deps.Recorder
	log := s.deps.Log
	return s, func() tea.Msg {
		if early {
			sess.Finish()
		}
		if rec == nil {
			res, err := sess.Result()
			return finishedMsg{Result: res, Err: err}
		}
		res, err := rec.Record(context.Background(), sess)
		if err == nil {
			return finishedMsg{Result: res}
		}
		log.Error("failed to record assessment", "session", sess.ID(), "error", err)
		res, rerr := sess.Result()
		if rerr != nil {
			return finishedMsg{Err: rerr}
		}
		return finishedMsg{Result: res, SaveErr: err}
	}
}

func (s *AssessmentScreen) handleFinished(msg finishedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.finishing = false
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: result.New(msg.Result, msg.SaveErr)}
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
