package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/logger"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseActive   Phase = iota // Serving questions
	PhaseComplete              // No more questions; result available
)

func (p Phase) String() string {
	if p == PhaseComplete {
		return "complete"
	}
	return "active"
}

// MarshalText encodes the phase by name for JSON payloads.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	switch string(b) {
	case "active":
		*p = PhaseActive
	case "complete":
		*p = PhaseComplete
	default:
		return fmt.Errorf("unknown session phase %q", b)
	}
	return nil
}

// Record is one graded response together with the context it was
// answered in.
type Record struct {
	Response     adaptive.UserResponse `json:"response"`
	Evaluation   grading.Evaluation    `json:"evaluation"`
	Difficulty   adaptive.Difficulty   `json:"difficulty"`
	QuestionType adaptive.QuestionType `json:"question_type"`
}

// Session tracks the runtime state of one adaptive assessment. All
// methods are safe for concurrent use; Submit calls are serialized.
type Session struct {
	mu sync.Mutex

	cfg       Config
	engine    *adaptive.Engine
	grader    Grader
	explainer Explainer
	log       *logger.Logger
	now       func() time.Time

	// ID is the UUID for this session. It doubles as the assessment ID.
	id string

	// questions is the catalog the session draws from.
	questions []adaptive.Question

	// profile is the working skill profile, replaced on every response.
	profile adaptive.SkillProfile

	// priorAssessments is profile.TotalAssessments at session start.
	priorAssessments int

	// difficulty is the level the next question is drawn at.
	difficulty adaptive.Difficulty

	// maxReached is the hardest level a question was served at.
	maxReached adaptive.Difficulty

	// current is the question in play (nil before Start and once complete).
	current *adaptive.Question

	// shownAt is when current was first displayed.
	shownAt time.Time

	// records is the ordered response log.
	records []Record

	// answered holds the question IDs served in this session. Selection
	// excludes these; the profile keeps the lifetime list.
	answered []string

	// streak is the number of consecutive correct responses ending at
	// the latest one.
	streak int

	bestStreak int

	// tallies tracks per-skill results, keyed by skill area.
	tallies map[string]*SkillTally

	phase     Phase
	startedAt time.Time
	result    *Result

	// recordMu serializes persistence; recorded is set once it succeeded.
	recordMu sync.Mutex
	recorded bool
}
