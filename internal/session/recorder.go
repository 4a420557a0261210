package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/store"
)

// Backend is the storage a Recorder writes through. *store.Store
// implements it.
type Backend interface {
	ProfileRepo() store.ProfileRepo
	ResultRepo() store.ResultRepo
	InTx(ctx context.Context, fn func(store.Repos) error) error
}

// Recorder persists completed sessions.
type Recorder struct {
	backend Backend
}

// NewRecorder creates a Recorder over b.
func NewRecorder(b Backend) *Recorder {
	return &Recorder{backend: b}
}

// NewStoreRecorder creates a Recorder backed by st.
func NewStoreRecorder(st *store.Store) *Recorder {
	return NewRecorder(st)
}

// LoadProfile returns the stored profile for userID, or a new empty one.
func (r *Recorder) LoadProfile(ctx context.Context, userID string) (adaptive.SkillProfile, error) {
	p, err := r.backend.ProfileRepo().Load(ctx, userID)
	if err != nil {
		return adaptive.SkillProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return adaptive.NewSkillProfile(userID), nil
	}
	return *p, nil
}

// Record builds the result of a completed session and persists the
// stamped profile, every response and the result itself in one
// transaction. A session is written once: after a successful Record,
// later calls return the result without touching the store, and after a
// failed one the next call tries again.
func (r *Recorder) Record(ctx context.Context, s *Session) (*Result, error) {
	res, err := s.Result()
	if err != nil {
		return nil, err
	}

	err = s.recordOnce(func() error {
		return r.backend.InTx(ctx, func(repos store.Repos) error {
			return persist(ctx, repos, s, res)
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func persist(ctx context.Context, repos store.Repos, s *Session, res *Result) error {
	for _, rec := range s.Records() {
		err := repos.Events.AppendResponse(ctx, store.ResponseEventData{
			SessionID:      s.ID(),
			UserID:         s.UserID(),
			QuestionID:     rec.Response.QuestionID,
			SkillArea:      rec.Response.SkillArea,
			Difficulty:     string(rec.Difficulty),
			QuestionType:   string(rec.QuestionType),
			Answer:         rec.Response.Answer,
			Correct:        rec.Response.Correct,
			ResponseTimeMs: rec.Response.ResponseTimeMs,
			Score:          rec.Evaluation.Score,
			Fallback:       rec.Evaluation.Fallback,
		})
		if err != nil {
			return fmt.Errorf("record response %s: %w", rec.Response.QuestionID, err)
		}
	}

	if err := repos.Profiles.Save(ctx, s.Profile()); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	if len(res.Responses) == 0 {
		return nil
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	err = repos.Results.SaveResult(ctx, store.ResultRecord{
		AssessmentID:   res.AssessmentID,
		UserID:         res.UserID,
		Score:          res.Score,
		TimeSpentMs:    res.TimeSpentMs,
		NextDifficulty: string(res.NextDifficulty),
		CompletedAt:    res.CompletedAt,
		Data:           data,
	})
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// History returns a user's past results, newest first.
func (r *Recorder) History(ctx context.Context, userID string, limit int) ([]Result, error) {
	recs, err := r.backend.ResultRepo().ListResults(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]Result, 0, len(recs))
	for _, rec := range recs {
		var res Result
		if err := json.Unmarshal(rec.Data, &res); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", rec.AssessmentID, err)
		}
		out = append(out, res)
	}
	return out, nil
}
