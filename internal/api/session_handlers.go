package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/grading"
	"github.com/abhisek/adaptiq/internal/session"
)

// questionView is a question as shown to the learner: no reference
// answer or explanation.
type questionView struct {
	ID               string                `json:"id"`
	Difficulty       adaptive.Difficulty   `json:"difficulty"`
	Type             adaptive.QuestionType `json:"type"`
	SkillArea        string                `json:"skill_area"`
	Content          string                `json:"content"`
	Choices          []string              `json:"choices,omitempty"`
	Hints            []string              `json:"hints,omitempty"`
	TimeLimitSeconds int                   `json:"time_limit_seconds,omitempty"`
}

func viewQuestion(q *adaptive.Question) *questionView {
	if q == nil {
		return nil
	}
	return &questionView{
		ID:               q.ID,
		Difficulty:       q.Difficulty,
		Type:             q.Type,
		SkillArea:        q.SkillArea,
		Content:          q.Content,
		Choices:          q.Choices,
		Hints:            q.Hints,
		TimeLimitSeconds: int(q.TimeLimit / time.Second),
	}
}

type sessionView struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Phase      session.Phase       `json:"phase"`
	Difficulty adaptive.Difficulty `json:"difficulty"`
	Question   *questionView       `json:"question,omitempty"`
	Answered   int                 `json:"answered"`
	Total      int                 `json:"total"`
	Streak     int                 `json:"streak"`
	Skills     map[string]float64  `json:"skills"`
}

func viewSession(snap session.Snapshot) sessionView {
	return sessionView{
		ID:         snap.ID,
		UserID:     snap.UserID,
		Phase:      snap.Phase,
		Difficulty: snap.Difficulty,
		Question:   viewQuestion(snap.Current),
		Answered:   snap.Answered,
		Total:      snap.Total,
		Streak:     snap.Streak,
		Skills:     snap.Skills,
	}
}

type outcomeView struct {
	Correct          bool                `json:"correct"`
	Evaluation       grading.Evaluation  `json:"evaluation"`
	ReferenceAnswer  string              `json:"reference_answer,omitempty"`
	Explanation      string              `json:"explanation,omitempty"`
	Feedback         *grading.Feedback   `json:"feedback,omitempty"`
	SkillArea        string              `json:"skill_area"`
	ScoreBefore      float64             `json:"score_before"`
	ScoreAfter       float64             `json:"score_after"`
	DifficultyBefore adaptive.Difficulty `json:"difficulty_before"`
	DifficultyAfter  adaptive.Difficulty `json:"difficulty_after"`
	Next             *questionView       `json:"next,omitempty"`
	Complete         bool                `json:"complete"`
	Result           *session.Result     `json:"result,omitempty"`
}

type createSessionRequest struct {
	UserID       string `json:"user_id"`
	MaxQuestions int    `json:"max_questions,omitempty"`
	SkillArea    string `json:"skill_area,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "validation_error", "user_id is required")
		return
	}

	questions := s.deps.Catalog.Filter(req.SkillArea)
	if len(questions) == 0 {
		s.respondError(w, http.StatusBadRequest, "validation_error", "no questions for skill area "+req.SkillArea)
		return
	}

	profile, err := s.deps.Recorder.LoadProfile(r.Context(), req.UserID)
	if err != nil {
		s.log.Error("failed to load profile", "user", req.UserID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal_error", "failed to load profile")
		return
	}

	cfg := s.deps.SessionConfig
	if req.MaxQuestions > 0 {
		cfg.MaxQuestions = req.MaxQuestions
	}
	opts := []session.Option{session.WithLogger(s.log)}
	if s.deps.Explainer != nil {
		opts = append(opts, session.WithExplainer(s.deps.Explainer))
	}
	sess, err := session.New(cfg, s.deps.Engine, s.deps.Grader, questions, profile, opts...)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if _, err := sess.Start(); err != nil {
		s.log.Error("failed to start session", "user", req.UserID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal_error", "failed to start session")
		return
	}
	s.deps.Registry.Add(sess)

	s.respondJSON(w, http.StatusCreated, viewSession(sess.Snapshot()))
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.deps.Registry.Get(chi.URLParam(r, "id"))
	if errors.Is(err, session.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "session_not_found", "session not found")
		return nil, false
	}
	return sess, err == nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, viewSession(sess.Snapshot()))
}

type answerRequest struct {
	Answer         string `json:"answer"`
	ResponseTimeMs int64  `json:"response_time_ms"`
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	out, err := sess.Submit(r.Context(), req.Answer, time.Duration(req.ResponseTimeMs)*time.Millisecond)
	switch {
	case errors.Is(err, session.ErrSessionComplete):
		s.respondError(w, http.StatusConflict, "session_complete", "session is already complete")
		return
	case err != nil:
		s.log.Error("failed to submit answer", "session", sess.ID(), "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit answer")
		return
	}

	view := outcomeView{
		Correct:          out.Response.Correct,
		Evaluation:       out.Evaluation,
		Feedback:         out.Feedback,
		SkillArea:        out.Response.SkillArea,
		ScoreBefore:      out.ScoreBefore,
		ScoreAfter:       out.ScoreAfter,
		DifficultyBefore: out.DifficultyBefore,
		DifficultyAfter:  out.DifficultyAfter,
		Next:             viewQuestion(out.Next),
		Complete:         out.Complete,
	}
	if asked, ok := s.deps.Catalog.Get(out.Response.QuestionID); ok {
		view.ReferenceAnswer = asked.ReferenceAnswer
		view.Explanation = asked.Explanation
	}

	if out.Complete {
		res, err := s.deps.Recorder.Record(r.Context(), sess)
		if err != nil {
			s.log.Error("failed to record session", "session", sess.ID(), "error", err)
			s.respondError(w, http.StatusInternalServerError, "internal_error", "failed to record result")
			return
		}
		view.Result = res
	}

	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	sess.Finish()

	// Record is a no-op once the session was saved, so this also retries
	// a save that failed when the last answer completed the session.
	res, err := s.deps.Recorder.Record(r.Context(), sess)
	if err != nil {
		s.log.Error("failed to record session", "session", sess.ID(), "error", err)
		s.respondError(w, http.StatusInternalServerError, "internal_error", "failed to record result")
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}
