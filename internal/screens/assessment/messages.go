package assessment

import (
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/session"
)

// startedMsg is sent when the profile is loaded and the first question
// chosen. A nil Question means the session completed immediately.
type startedMsg struct {
	Session  *session.Session
	Question *adaptive.Question
	Err      error
}

// gradedMsg carries the outcome of a submitted answer.
type gradedMsg struct {
	Outcome *session.Outcome
	Err     error
}

// finishedMsg is sent once the result is built and persisted. SaveErr is
// set when the result was built but could not be stored.
type finishedMsg struct {
	Result  *session.Result
	SaveErr error
	Err     error
}

// timerTickMsg is sent every second to update the question countdown.
type timerTickMsg time.Time
