// Package session runs one adaptive assessment: it sequences grading,
// skill-profile updates, difficulty adjustment and question selection,
// and decides when the assessment is complete.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/logger"
)

var (
	// ErrSessionComplete is returned when answering a finished session.
	ErrSessionComplete = errors.New("session is complete")

	// ErrSessionActive is returned when a result is requested before
	// the session has finished.
	ErrSessionActive = errors.New("session is still active")

	// ErrNotStarted is returned when answering before Start.
	ErrNotStarted = errors.New("session has not started")

	// ErrNotFound is returned by Registry for unknown session IDs.
	ErrNotFound = errors.New("session not found")
)

// Grader scores an answer. *grading.Grader implements it.
type Grader interface {
	Grade(ctx context.Context, q adaptive.Question, answer string) grading.Evaluation
}

// Explainer produces feedback on an incorrect answer. *grading.Explainer
// implements it.
type Explainer interface {
	Explain(ctx context.Context, q adaptive.Question, answer string) (*grading.Feedback, error)
}

// Option customizes a Session.
type Option func(*Session)

// WithExplainer enables LLM feedback on incorrect answers.
func WithExplainer(e Explainer) Option {
	return func(s *Session) { s.explainer = e }
}

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID sets the session ID instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New validates its inputs and returns a session that has not started.
// The profile is cloned; the caller's copy is never modified.
func New(cfg Config, engine *adaptive.Engine, grader Grader, questions []adaptive.Question, profile adaptive.SkillProfile, opts ...Option) (*Session, error) {
	if engine == nil {
		return nil, errors.New("session: engine is required")
	}
	if grader == nil {
		return nil, errors.New("session: grader is required")
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("session: %w", adaptive.ErrEmptyCatalog)
	}
	if strings.TrimSpace(profile.UserID) == "" {
		return nil, errors.New("session: user ID is required")
	}
	cfg = cfg.withDefaults()
	if !cfg.StartDifficulty.Valid() {
		return nil, fmt.Errorf("session: %w: %q", adaptive.ErrUnknownDifficulty, cfg.StartDifficulty)
	}

	p := profile.Clone()
	if p.Skills == nil {
		p.Skills = make(map[string]float64)
	}
	if p.QuestionTypeCounts == nil {
		p.QuestionTypeCounts = make(map[adaptive.QuestionType]int)
	}

	s := &Session{
		cfg:              cfg,
		engine:           engine,
		grader:           grader,
		log:              logger.Nop(),
		now:              time.Now,
		id:               uuid.NewString(),
		questions:        slices.Clone(questions),
		profile:          p,
		priorAssessments: p.TotalAssessments,
		difficulty:       cfg.StartDifficulty,
		tallies:          make(map[string]*SkillTally),
		phase:            PhaseActive,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Start selects the first question. If nothing is eligible at the start
// difficulty the search widens to neighbouring levels; if nothing is
// eligible anywhere the session completes immediately. Calling Start
// again is a no-op.
func (s *Session) Start() (*adaptive.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseComplete || s.current != nil {
		return s.currentCopy(), nil
	}

	s.startedAt = s.now()
	sel, d, err := s.engine.SelectInitialQuestion(s.questions, s.selectionProfile(), s.cfg.StartDifficulty)
	if err != nil {
		return nil, fmt.Errorf("select first question: %w", err)
	}
	if sel.Complete {
		s.log.Info("no eligible questions, completing session", "session", s.id, "user", s.profile.UserID)
		s.complete()
		return nil, nil
	}

	s.difficulty = d
	s.show(sel.Question)
	s.log.Debug("session started",
		"session", s.id, "user", s.profile.UserID,
		"difficulty", d, "question", sel.Question.ID)
	return s.currentCopy(), nil
}

// Outcome describes the effect of one submitted answer.
type Outcome struct {
	Response         adaptive.UserResponse `json:"response"`
	Evaluation       grading.Evaluation    `json:"evaluation"`
	ScoreBefore      float64               `json:"score_before"`
	ScoreAfter       float64               `json:"score_after"`
	DifficultyBefore adaptive.Difficulty   `json:"difficulty_before"`
	DifficultyAfter  adaptive.Difficulty   `json:"difficulty_after"`
	// Next is the next question, nil when Complete.
	Next     *adaptive.Question `json:"next,omitempty"`
	Complete bool               `json:"complete"`
	// Feedback is set for incorrect free-text and practical answers when
	// an explainer is configured and it succeeded.
	Feedback *grading.Feedback `json:"feedback,omitempty"`
}

// Submit grades answer to the current question and advances the
// session. elapsed is the learner's response time; a non-positive value
// means the time since the question was shown is used instead.
func (s *Session) Submit(ctx context.Context, answer string, elapsed time.Duration) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseComplete {
		return nil, ErrSessionComplete
	}
	if s.current == nil {
		return nil, ErrNotStarted
	}
	if elapsed <= 0 {
		elapsed = max(s.now().Sub(s.shownAt), 0)
	}

	q := *s.current

	gctx, cancel := context.WithTimeout(ctx, s.cfg.GradeTimeout)
	eval := s.grader.Grade(gctx, q, answer)
	cancel()

	resp := adaptive.UserResponse{
		QuestionID:     q.ID,
		Answer:         answer,
		Correct:        eval.Correct(),
		ResponseTimeMs: elapsed.Milliseconds(),
		SkillArea:      q.SkillArea,
	}

	before := s.profile.Score(q.SkillArea)
	s.profile = s.engine.UpdateSkillProfile(s.profile, resp, q.Difficulty)
	after := s.profile.Score(q.SkillArea)
	s.recordAnswer(q, resp)

	s.records = append(s.records, Record{
		Response:     resp,
		Evaluation:   eval,
		Difficulty:   q.Difficulty,
		QuestionType: q.Type,
	})
	s.tally(q.SkillArea, before).Record(resp.Correct, after)

	if resp.Correct {
		s.streak++
		s.bestStreak = max(s.bestStreak, s.streak)
	} else {
		s.streak = 0
	}

	prev := s.difficulty
	perf := recentPerformance(s.records, s.cfg.PerformanceWindow)
	s.difficulty = s.engine.CalculateNextDifficulty(prev, perf, elapsed, s.streak)

	out := &Outcome{
		Response:         resp,
		Evaluation:       eval,
		ScoreBefore:      before,
		ScoreAfter:       after,
		DifficultyBefore: prev,
		DifficultyAfter:  s.difficulty,
	}

	s.log.Debug("answer graded",
		"session", s.id, "question", q.ID, "skill", q.SkillArea,
		"score", eval.Score, "fallback", eval.Fallback, "correct", resp.Correct,
		"skill_score", after, "difficulty", s.difficulty, "performance", perf)

	if !resp.Correct {
		out.Feedback = s.explain(ctx, q, answer)
	}

	if len(s.records) >= s.cfg.MaxQuestions {
		s.complete()
		out.Complete = true
		return out, nil
	}

	sel, err := s.engine.SelectNextQuestion(s.questions, s.selectionProfile(), s.difficulty)
	if err != nil {
		return nil, fmt.Errorf("select next question: %w", err)
	}
	if sel.Complete {
		s.complete()
		out.Complete = true
		return out, nil
	}
	s.show(sel.Question)
	out.Next = s.currentCopy()
	return out, nil
}

// selectionProfile is the working profile with its answered list narrowed
// to this session, so questions from earlier assessments are eligible again.
func (s *Session) selectionProfile() adaptive.SkillProfile {
	p := s.profile
	p.AnsweredQuestions = s.answered
	return p
}

// recordAnswer folds resp into the profile's history fields.
func (s *Session) recordAnswer(q adaptive.Question, resp adaptive.UserResponse) {
	if !slices.Contains(s.answered, q.ID) {
		s.answered = append(s.answered, q.ID)
	}
	if !s.profile.HasAnswered(q.ID) {
		s.profile.AnsweredQuestions = append(s.profile.AnsweredQuestions, q.ID)
	}
	s.profile.QuestionTypeCounts[q.Type]++

	var n int
	for _, c := range s.profile.QuestionTypeCounts {
		n += c
	}
	avg := s.profile.AverageResponseTimeMs
	s.profile.AverageResponseTimeMs = avg + (float64(resp.ResponseTimeMs)-avg)/float64(n)
}

func (s *Session) explain(ctx context.Context, q adaptive.Question, answer string) *grading.Feedback {
	if s.explainer == nil || !s.cfg.ExplainMistakes || q.Type == adaptive.TypeMultipleChoice {
		return nil
	}
	fctx, cancel := context.WithTimeout(ctx, s.cfg.GradeTimeout)
	defer cancel()
	fb, err := s.explainer.Explain(fctx, q, answer)
	if err != nil {
		s.log.Warn("feedback unavailable", "session", s.id, "question", q.ID, "error", err)
		return nil
	}
	return fb
}

func (s *Session) tally(skill string, before float64) *SkillTally {
	t, ok := s.tallies[skill]
	if !ok {
		t = &SkillTally{SkillArea: skill, ScoreBefore: before, ScoreAfter: before}
		s.tallies[skill] = t
	}
	return t
}

func (s *Session) show(q *adaptive.Question) {
	s.current = q
	s.shownAt = s.now()
	if s.maxReached == "" || s.maxReached.Less(q.Difficulty) {
		s.maxReached = q.Difficulty
	}
}

func (s *Session) complete() {
	s.phase = PhaseComplete
	s.current = nil
}

func (s *Session) currentCopy() *adaptive.Question {
	if s.current == nil {
		return nil
	}
	q := *s.current
	return &q
}

// Finish ends the session early. It reports whether this call ended the
// session; it is a no-op on a completed session.
func (s *Session) Finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseComplete {
		return false
	}
	s.log.Debug("session finished early", "session", s.id, "responses", len(s.records))
	s.complete()
	return true
}

// Recorded reports whether the completed session has been persisted.
func (s *Session) Recorded() bool {
	s.recordMu.Lock()
	defer s.recordMu.Unlock()
	return s.recorded
}

// recordOnce calls save unless an earlier call succeeded. Concurrent
// callers wait for the one in flight.
func (s *Session) recordOnce(save func() error) error {
	s.recordMu.Lock()
	defer s.recordMu.Unlock()
	if s.recorded {
		return nil
	}
	if err := save(); err != nil {
		return err
	}
	s.recorded = true
	return nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// UserID returns the learner the session belongs to.
func (s *Session) UserID() string { return s.profile.UserID }

// Current returns a copy of the question in play, or nil.
func (s *Session) Current() *adaptive.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentCopy()
}

// Phase returns the session phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Difficulty returns the level the next question is drawn at.
func (s *Session) Difficulty() adaptive.Difficulty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.difficulty
}

// Profile returns a copy of the working skill profile.
func (s *Session) Profile() adaptive.SkillProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

// Records returns a copy of the response log.
func (s *Session) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Progress reports how many responses were recorded and the maximum.
func (s *Session) Progress() (answered, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), s.cfg.MaxQuestions
}

// Streak returns the current consecutive-correct count.
func (s *Session) Streak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streak
}

// Snapshot is a point-in-time view of a session for display.
type Snapshot struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Phase      Phase               `json:"phase"`
	Difficulty adaptive.Difficulty `json:"difficulty"`
	Current    *adaptive.Question  `json:"current,omitempty"`
	Answered   int                 `json:"answered"`
	Total      int                 `json:"total"`
	Streak     int                 `json:"streak"`
	Skills     map[string]float64  `json:"skills"`
	StartedAt  time.Time           `json:"started_at"`
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.id,
		UserID:     s.profile.UserID,
		Phase:      s.phase,
		Difficulty: s.difficulty,
		Current:    s.currentCopy(),
		Answered:   len(s.records),
		Total:      s.cfg.MaxQuestions,
		Streak:     s.streak,
		Skills:     s.profile.Clone().Skills,
		StartedAt:  s.startedAt,
	}
}
