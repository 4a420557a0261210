package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRecorderRoundTrip(t *testing.T) {
	st := openStore(t)
	rec := NewStoreRecorder(st)
	ctx := context.Background()

	p, err := rec.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Empty(t, p.Skills)

	cfg := DefaultConfig()
	cfg.MaxQuestions = 2
	s, err := New(cfg, testEngine(), &answerGrader{}, []adaptive.Question{
		q("m1", adaptive.DifficultyMedium, "Hooks"),
		q("m2", adaptive.DifficultyMedium, "Hooks"),
		q("m3", adaptive.DifficultyMedium, "Hooks"),
	}, p, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	_, err = s.Start()
	require.NoError(t, err)
	for _, a := range []string{"right", "wrong"} {
		_, err := s.Submit(ctx, a, time.Second)
		require.NoError(t, err)
	}

	res, err := rec.Record(ctx, s)
	require.NoError(t, err)
	assert.InDelta(t, 50, res.Score, 1e-9)

	saved, err := rec.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.TotalAssessments)
	assert.Len(t, saved.AnsweredQuestions, 2)
	assert.InDelta(t, 55, saved.Skills["Hooks"], 1e-9)

	events, err := st.EventRepo().ResponsesForSession(ctx, s.ID())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Correct)
	assert.Equal(t, "medium", events[0].Difficulty)
	assert.Equal(t, "free-text", events[0].QuestionType)

	history, err := rec.History(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, s.ID(), history[0].AssessmentID)
	assert.Len(t, history[0].Responses, 2)
}

func TestRecorderRejectsActiveSession(t *testing.T) {
	rec := NewStoreRecorder(openStore(t))
	s, _ := newTestSession(t, DefaultConfig(), []adaptive.Question{
		q("m1", adaptive.DifficultyMedium, "A"),
		q("m2", adaptive.DifficultyMedium, "A"),
	})
	_, err := s.Start()
	require.NoError(t, err)

	_, err = rec.Record(context.Background(), s)
	assert.ErrorIs(t, err, ErrSessionActive)
}

// failingResults rejects the first fails saves.
type failingResults struct {
	store.ResultRepo
	fails int
}

func (f *failingResults) SaveResult(ctx context.Context, rec store.ResultRecord) error {
	if f.fails > 0 {
		f.fails--
		return errors.New("disk full")
	}
	return f.ResultRepo.SaveResult(ctx, rec)
}

// flakyBackend swaps in failingResults inside every transaction.
type flakyBackend struct {
	*store.Store
	results *failingResults
}

func (b *flakyBackend) InTx(ctx context.Context, fn func(store.Repos) error) error {
	return b.Store.InTx(ctx, func(r store.Repos) error {
		b.results.ResultRepo = r.Results
		r.Results = b.results
		return fn(r)
	})
}

func completedSession(t *testing.T, p adaptive.SkillProfile) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxQuestions = 2
	s, err := New(cfg, testEngine(), &answerGrader{}, []adaptive.Question{
		q("m1", adaptive.DifficultyMedium, "Hooks"),
		q("m2", adaptive.DifficultyMedium, "Hooks"),
		q("m3", adaptive.DifficultyMedium, "Hooks"),
	}, p, WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	_, err = s.Start()
	require.NoError(t, err)
	for _, a := range []string{"right", "wrong"} {
		_, err := s.Submit(context.Background(), a, time.Second)
		require.NoError(t, err)
	}
	return s
}

func TestRecorderIsAtomic(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s := completedSession(t, adaptive.NewSkillProfile("u1"))

	// A result row with the same ID makes the final insert fail.
	require.NoError(t, st.ResultRepo().SaveResult(ctx, store.ResultRecord{AssessmentID: s.ID(), UserID: "u1"}))

	_, err := NewStoreRecorder(st).Record(ctx, s)
	require.Error(t, err)
	assert.False(t, s.Recorded())

	events, err := st.EventRepo().ResponsesForSession(ctx, s.ID())
	require.NoError(t, err)
	assert.Empty(t, events, "responses written despite the failed save")

	p, err := st.ProfileRepo().Load(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p, "profile written despite the failed save")
}

func TestRecorderRetriesAfterFailedSave(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	rec := NewRecorder(&flakyBackend{Store: st, results: &failingResults{fails: 1}})
	s := completedSession(t, adaptive.NewSkillProfile("u1"))

	_, err := rec.Record(ctx, s)
	require.Error(t, err)
	assert.False(t, s.Recorded())

	res, err := rec.Record(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, s.ID(), res.AssessmentID)
	assert.True(t, s.Recorded())

	// A further call does not write the session again.
	_, err = rec.Record(ctx, s)
	require.NoError(t, err)

	events, err := st.EventRepo().ResponsesForSession(ctx, s.ID())
	require.NoError(t, err)
	assert.Len(t, events, 2)

	history, err := rec.History(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	saved, err := rec.LoadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.TotalAssessments)
}
