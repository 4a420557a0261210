package grading

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/llm"
)

func newGrader(responses ...llm.MockResponse) (*Grader, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	return NewGrader(mock, DefaultConfig(), nil), mock
}

func TestEvaluateDescriptiveAnswer_ParsesScore(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  float64
	}{
		{"bare number", "0.85", 0.85},
		{"padded", "  0.3\n", 0.3},
		{"with prose", "Score: 0.6 because it misses cleanup", 0.6},
		{"leading dot", ".5", 0.5},
		{"integer one", "1", 1},
		{"above range", "1.7", 1},
		{"negative", "-0.2", 0},
		{"out of ten", "8/10", 1},
		{"json string", `"0.4"`, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newGrader(llm.MockText(tt.reply))
			ev := g.EvaluateDescriptiveAnswer(context.Background(), "answer", "reference")
			assert.False(t, ev.Fallback)
			assert.InDelta(t, tt.want, ev.Score, 1e-9)
			assert.Equal(t, strings.Trim(strings.TrimSpace(tt.reply), `"`), ev.Raw)
		})
	}
}

func TestEvaluateDescriptiveAnswer_FallsBack(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider unavailable", llm.MockError(&llm.ErrProviderUnavailable{Err: errors.New("down")})},
		{"rate limited", llm.MockError(&llm.ErrRateLimit{})},
		{"deadline", llm.MockError(context.DeadlineExceeded)},
		{"no number", llm.MockText("I cannot grade this")},
		{"empty", llm.MockText("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newGrader(tt.resp)
			ev := g.EvaluateDescriptiveAnswer(context.Background(), "answer", "reference")
			assert.True(t, ev.Fallback)
			assert.Equal(t, FallbackScore, ev.Score)
			assert.NotEmpty(t, ev.Reason)
			assert.False(t, ev.Correct())
		})
	}
}

func TestEvaluateDescriptiveAnswer_NilProvider(t *testing.T) {
	g := NewGrader(nil, DefaultConfig(), nil)
	ev := g.EvaluateDescriptiveAnswer(context.Background(), "a", "b")
	assert.True(t, ev.Fallback)
	assert.Equal(t, 0.5, ev.Score)
}

func TestEvaluateDescriptiveAnswer_FallbackIsDistinctFromGenuineHalf(t *testing.T) {
	g, _ := newGrader(llm.MockText("0.5"), llm.MockError(errors.New("boom")))

	genuine := g.EvaluateDescriptiveAnswer(context.Background(), "a", "b")
	failed := g.EvaluateDescriptiveAnswer(context.Background(), "a", "b")

	assert.Equal(t, genuine.Score, failed.Score)
	assert.False(t, genuine.Fallback)
	assert.True(t, failed.Fallback)
}

func TestEvaluateDescriptiveAnswer_PromptAndPurpose(t *testing.T) {
	g, mock := newGrader(llm.MockText("0.9"))
	g.EvaluateDescriptiveAnswer(context.Background(), "useEffect runs after render", "Effects run after paint")

	req, ok := mock.LastCall()
	require.True(t, ok)
	assert.Nil(t, req.Schema)
	assert.Equal(t, gradingSystemPrompt, req.System)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "Reference answer:\nEffects run after paint")
	assert.Contains(t, req.Messages[0].Content, "Learner answer:\nuseEffect runs after render")
}

func TestEvaluateDescriptiveAnswer_ScoreAlwaysInRange(t *testing.T) {
	replies := []string{"0", "1", "0.999", "42", "-7", "1e9", "-1e-9", "nan", "∞", "0.5.5", "score=+.25"}
	for _, r := range replies {
		g, _ := newGrader(llm.MockText(r))
		ev := g.EvaluateDescriptiveAnswer(context.Background(), "a", "b")
		assert.GreaterOrEqual(t, ev.Score, 0.0, r)
		assert.LessOrEqual(t, ev.Score, 1.0, r)
	}
}

func TestEvaluation_Correct(t *testing.T) {
	assert.True(t, Evaluation{Score: 0.7}.Correct())
	assert.True(t, Evaluation{Score: 1}.Correct())
	assert.False(t, Evaluation{Score: 0.69}.Correct())
}

func TestGrade_Dispatch(t *testing.T) {
	mcq := adaptive.Question{
		ID:              "q1",
		Type:            adaptive.TypeMultipleChoice,
		Choices:         []string{"useState", "useEffect", "useMemo"},
		ReferenceAnswer: "useEffect",
	}
	free := adaptive.Question{ID: "q2", Type: adaptive.TypeFreeText, ReferenceAnswer: "ref"}

	g, mock := newGrader(llm.MockText("0.75"))

	assert.Equal(t, 1.0, g.Grade(context.Background(), mcq, "2").Score)
	assert.Equal(t, 0.0, g.Grade(context.Background(), mcq, "useMemo").Score)
	assert.Equal(t, 0, mock.CallCount(), "multiple choice must not call the LLM")

	blank := g.Grade(context.Background(), free, "   ")
	assert.Equal(t, 0.0, blank.Score)
	assert.False(t, blank.Fallback)
	assert.Equal(t, 0, mock.CallCount())

	ev := g.Grade(context.Background(), free, "something")
	assert.InDelta(t, 0.75, ev.Score, 1e-9)
	assert.True(t, ev.Correct())
	assert.Equal(t, 1, mock.CallCount())
}

func TestParseScore_ClampsOverflow(t *testing.T) {
	tests := []struct {
		reply string
		want  float64
	}{
		{"1e999", 1},
		{"Score: 1e999 (very good)", 1},
		{"-1e999", 0},
		{"1e-999", 0},
	}
	for _, tt := range tests {
		got, err := ParseScore(tt.reply)
		require.NoError(t, err, tt.reply)
		assert.Equal(t, tt.want, got, tt.reply)
	}

	g, _ := newGrader(llm.MockText("1e999"))
	ev := g.Grade(context.Background(), adaptive.Question{ID: "q", Type: adaptive.TypeFreeText, ReferenceAnswer: "ref"}, "answer")
	assert.Equal(t, 1.0, ev.Score)
	assert.False(t, ev.Fallback)
}

func TestParseScore_NoNumber(t *testing.T) {
	_, err := ParseScore("excellent")
	assert.ErrorIs(t, err, ErrNoScore)
}
