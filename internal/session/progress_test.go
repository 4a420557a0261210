package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/adaptiq/internal/adaptive"
)

func records(correct ...bool) []Record {
	out := make([]Record, len(correct))
	for i, c := range correct {
		out[i] = Record{Response: adaptive.UserResponse{Correct: c}}
	}
	return out
}

func TestRecentPerformance(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		window  int
		want    float64
	}{
		{"no responses", nil, 3, 0},
		{"fewer than window", records(true), 3, 1},
		{"window of three", records(false, false, true, true, false), 3, 2.0 / 3},
		{"old misses fall out", records(false, false, true, true, true), 3, 1},
		{"window of one", records(true, false), 1, 0},
		{"zero window", records(true), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, recentPerformance(tt.records, tt.window), 1e-9)
		})
	}
}

func TestSkillTally(t *testing.T) {
	tally := &SkillTally{SkillArea: "Hooks", ScoreBefore: 50, ScoreAfter: 50}
	assert.Zero(t, tally.Accuracy())

	tally.Record(true, 60)
	tally.Record(false, 55)

	assert.Equal(t, 2, tally.Attempted)
	assert.Equal(t, 1, tally.Correct)
	assert.InDelta(t, 0.5, tally.Accuracy(), 1e-9)
	assert.InDelta(t, 5, tally.Delta(), 1e-9)
}
