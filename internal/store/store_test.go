package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is checked with a file-based DB below.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestFileDBUsesWAL(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "adaptiq.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := migrate(context.Background(), s.Driver()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	for _, table := range []string{"profiles", "response_events", "llm_request_events", "assessment_results", "global_sequence"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := nextSequence(ctx, s.Driver())
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Monotonically increasing from 1.
	for i, seq := range seqs {
		if want := int64(i + 1); seq != want {
			t.Errorf("seq[%d] = %d, want %d", i, seq, want)
		}
	}
}

func TestProfileLoadMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)
	p, err := s.ProfileRepo().Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
}

func TestProfileSaveLoadUpsert(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProfileRepo()
	ctx := context.Background()

	p := adaptive.NewSkillProfile("u1")
	p.Skills["React Hooks"] = 62.5
	p.AnsweredQuestions = []string{"q1", "q2"}
	p.QuestionTypeCounts[adaptive.TypeMultipleChoice] = 2
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	p.Skills["React Hooks"] = 70
	p.TotalAssessments = 1
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := repo.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Skills["React Hooks"] != 70 {
		t.Errorf("skill = %v, want 70", got.Skills["React Hooks"])
	}
	if got.TotalAssessments != 1 {
		t.Errorf("total assessments = %d, want 1", got.TotalAssessments)
	}
	if len(got.AnsweredQuestions) != 2 {
		t.Errorf("answered = %v, want 2 entries", got.AnsweredQuestions)
	}
	if got.QuestionTypeCounts[adaptive.TypeMultipleChoice] != 2 {
		t.Errorf("type counts = %v", got.QuestionTypeCounts)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("list len = %d, want 1", len(all))
	}
}

func TestProfileSaveRejectsEmptyUser(t *testing.T) {
	s := openTestStore(t)
	if err := s.ProfileRepo().Save(context.Background(), adaptive.NewSkillProfile("")); err == nil {
		t.Fatal("expected error for empty user ID")
	}
}

func TestResponsesForSession(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, sid := range []string{"s1", "s2", "s1"} {
		err := repo.AppendResponse(ctx, ResponseEventData{
			SessionID:      sid,
			UserID:         "u1",
			QuestionID:     fmt.Sprintf("q%d", i),
			SkillArea:      "Hooks",
			Difficulty:     "medium",
			QuestionType:   "free-text",
			Answer:         "answer",
			Correct:        i == 0,
			ResponseTimeMs: 1200,
			Score:          0.5,
			Fallback:       i == 2,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.ResponsesForSession(ctx, "s1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d responses, want 2", len(got))
	}
	if got[0].QuestionID != "q0" || got[1].QuestionID != "q2" {
		t.Errorf("unexpected order: %s, %s", got[0].QuestionID, got[1].QuestionID)
	}
	if !got[0].Correct || got[1].Correct {
		t.Error("correct flag not round-tripped")
	}
	if !got[1].Fallback {
		t.Error("fallback flag not round-tripped")
	}
	if got[0].Sequence >= got[1].Sequence {
		t.Error("sequence not increasing")
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "mock", Model: "gpt-4o-mini", Purpose: "answer-grading", InputTokens: 100, OutputTokens: 2, LatencyMs: 200, Success: true, RequestBody: "[user]\nGrade", ResponseBody: "0.8"},
		{Provider: "mock", Model: "gpt-4o-mini", Purpose: "answer-grading", InputTokens: 80, OutputTokens: 3, LatencyMs: 400, Success: true},
		{Provider: "mock", Model: "gemini-2.0-flash", Purpose: "answer-feedback", InputTokens: 300, OutputTokens: 90, LatencyMs: 900, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Purpose != "answer-feedback" {
		t.Errorf("expected newest first, got %s", all[0].Purpose)
	}
	if !all[0].Timestamp.Equal(s.now()) {
		t.Errorf("timestamp = %v", all[0].Timestamp)
	}

	grading, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "answer-grading", Limit: 1})
	if err != nil {
		t.Fatalf("query purpose: %v", err)
	}
	if len(grading) != 1 || grading[0].InputTokens != 80 {
		t.Errorf("unexpected filtered events: %+v", grading)
	}

	first, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if first.ResponseBody != "0.8" || !first.Success {
		t.Errorf("unexpected event: %+v", first)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown ID")
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 || byPurpose[0].Purpose != "answer-grading" {
		t.Fatalf("unexpected purpose usage: %+v", byPurpose)
	}
	if byPurpose[0].Calls != 2 || byPurpose[0].InputTokens != 180 || byPurpose[0].AvgLatencyMs != 300 {
		t.Errorf("unexpected grading usage: %+v", byPurpose[0])
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "gemini-2.0-flash" || byModel[1].OutputTokens != 5 {
		t.Errorf("unexpected model usage: %+v", byModel)
	}
}

func TestResults(t *testing.T) {
	s := openTestStore(t)
	repo := s.ResultRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		err := repo.SaveResult(ctx, ResultRecord{
			AssessmentID:   fmt.Sprintf("a%d", i),
			UserID:         "u1",
			Score:          float64(i * 10),
			TimeSpentMs:    1000,
			NextDifficulty: "medium",
			CompletedAt:    base.Add(time.Duration(i) * time.Hour),
			Data:           []byte(`{"score":0}`),
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if err := repo.SaveResult(ctx, ResultRecord{AssessmentID: "other", UserID: "u2", CompletedAt: base}); err != nil {
		t.Fatalf("save other: %v", err)
	}

	got, err := repo.ListResults(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].AssessmentID != "a2" || got[1].AssessmentID != "a1" {
		t.Errorf("unexpected order: %s, %s", got[0].AssessmentID, got[1].AssessmentID)
	}
	if !got[0].CompletedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("completed_at = %v", got[0].CompletedAt)
	}

	if err := repo.SaveResult(ctx, ResultRecord{AssessmentID: "a0", UserID: "u1"}); err == nil {
		t.Error("expected duplicate assessment ID to fail")
	}
}

func TestProfileReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.ProfileRepo().Save(ctx, adaptive.NewSkillProfile("u1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.ProfileRepo().Save(ctx, adaptive.NewSkillProfile("u2")); err != nil {
		t.Fatalf("save: %v", err)
	}
	err := s.EventRepo().AppendResponse(ctx, ResponseEventData{SessionID: "s1", UserID: "u1", QuestionID: "q1"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.ResultRepo().SaveResult(ctx, ResultRecord{AssessmentID: "a1", UserID: "u1"}); err != nil {
		t.Fatalf("save result: %v", err)
	}

	existed, err := s.ProfileRepo().Reset(ctx, "u1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !existed {
		t.Error("expected reset to report an existing profile")
	}

	if p, _ := s.ProfileRepo().Load(ctx, "u1"); p != nil {
		t.Error("profile still present after reset")
	}
	if got, _ := s.EventRepo().ResponsesForSession(ctx, "s1"); len(got) != 0 {
		t.Errorf("responses still present: %d", len(got))
	}
	if got, _ := s.ResultRepo().ListResults(ctx, "u1", 0); len(got) != 0 {
		t.Errorf("results still present: %d", len(got))
	}
	if p, _ := s.ProfileRepo().Load(ctx, "u2"); p == nil {
		t.Error("reset removed another user's profile")
	}

	existed, err = s.ProfileRepo().Reset(ctx, "u1")
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if existed {
		t.Error("second reset should report no profile")
	}
}

func TestInTxCommits(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(r Repos) error {
		if err := r.Profiles.Save(ctx, adaptive.NewSkillProfile("u1")); err != nil {
			return err
		}
		if err := r.Events.AppendResponse(ctx, ResponseEventData{SessionID: "s1", UserID: "u1", QuestionID: "q1"}); err != nil {
			return err
		}
		return r.Results.SaveResult(ctx, ResultRecord{AssessmentID: "s1", UserID: "u1"})
	})
	if err != nil {
		t.Fatalf("in tx: %v", err)
	}

	if p, _ := s.ProfileRepo().Load(ctx, "u1"); p == nil {
		t.Error("profile not committed")
	}
	if got, _ := s.EventRepo().ResponsesForSession(ctx, "s1"); len(got) != 1 {
		t.Errorf("responses = %d, want 1", len(got))
	}
	if got, _ := s.ResultRepo().ListResults(ctx, "u1", 0); len(got) != 1 {
		t.Errorf("results = %d, want 1", len(got))
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(r Repos) error {
		if err := r.Profiles.Save(ctx, adaptive.NewSkillProfile("u1")); err != nil {
			return err
		}
		if err := r.Events.AppendResponse(ctx, ResponseEventData{SessionID: "s1", UserID: "u1", QuestionID: "q1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	if p, _ := s.ProfileRepo().Load(ctx, "u1"); p != nil {
		t.Error("profile survived rollback")
	}
	if got, _ := s.EventRepo().ResponsesForSession(ctx, "s1"); len(got) != 0 {
		t.Errorf("responses survived rollback: %d", len(got))
	}

	// The sequence increment rolled back with the transaction.
	seq, err := nextSequence(ctx, s.Driver())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if seq != 1 {
		t.Errorf("seq = %d, want 1", seq)
	}
}

func TestResetInsideTransaction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.ProfileRepo().Save(ctx, adaptive.NewSkillProfile("u1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	err := s.InTx(ctx, func(r Repos) error {
		existed, err := r.Profiles.Reset(ctx, "u1")
		if err != nil {
			return err
		}
		if !existed {
			t.Error("expected existing profile")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("in tx: %v", err)
	}
	if p, _ := s.ProfileRepo().Load(ctx, "u1"); p != nil {
		t.Error("profile still present after reset")
	}
}
