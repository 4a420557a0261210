package session

import (
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
)

// Config controls how an assessment session runs.
type Config struct {
	// StartDifficulty is the level of the first question.
	StartDifficulty adaptive.Difficulty

	// MaxQuestions ends the session after this many responses.
	MaxQuestions int

	// PerformanceWindow is the number of most recent responses that
	// make up recentPerformance for difficulty adjustment.
	PerformanceWindow int

	// GradeTimeout bounds each grading (and feedback) LLM call.
	GradeTimeout time.Duration

	// RecommendBelow is the skill score under which an area is
	// recommended for further study.
	RecommendBelow float64

	// ExplainMistakes requests LLM feedback for incorrect free-text and
	// practical answers when an explainer is configured.
	ExplainMistakes bool
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		StartDifficulty:   adaptive.DifficultyMedium,
		MaxQuestions:      10,
		PerformanceWindow: 3,
		GradeTimeout:      20 * time.Second,
		RecommendBelow:    70,
		ExplainMistakes:   true,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StartDifficulty == "" {
		c.StartDifficulty = d.StartDifficulty
	}
	if c.MaxQuestions <= 0 {
		c.MaxQuestions = d.MaxQuestions
	}
	if c.PerformanceWindow <= 0 {
		c.PerformanceWindow = d.PerformanceWindow
	}
	if c.GradeTimeout <= 0 {
		c.GradeTimeout = d.GradeTimeout
	}
	if c.RecommendBelow <= 0 {
		c.RecommendBelow = d.RecommendBelow
	}
	return c
}
