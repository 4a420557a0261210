package adaptive

import "time"

// DefaultSkillScore is the proficiency assumed for a skill area that has
// no recorded score yet.
const DefaultSkillScore = 50.0

// Score bounds for every skill area.
const (
	MinSkillScore = 0.0
	MaxSkillScore = 100.0
)

// Params holds the engine's tuning constants. The defaults are the
// reference values; no calibration data exists for other values.
type Params struct {
	// OptimalResponseTime is the response time at or below which no
	// time penalty applies.
	OptimalResponseTime time.Duration
	// MaxResponseTime is the response time at or above which the full
	// time penalty applies.
	MaxResponseTime time.Duration
	// MinTimeWeight is the time weight applied at MaxResponseTime.
	MinTimeWeight float64

	// StepUpThreshold is the performance score that must be exceeded
	// (together with MinConsecutiveCorrect) to raise difficulty.
	StepUpThreshold float64
	// StepDownThreshold is the performance score below which
	// difficulty drops.
	StepDownThreshold float64
	// MinConsecutiveCorrect is the streak required to raise difficulty.
	MinConsecutiveCorrect int

	LearningRate float64
	// IncorrectImpact is the base impact of a wrong answer. A correct
	// answer always has base impact 1.
	IncorrectImpact   float64
	DifficultyWeights map[Difficulty]float64
}

// DefaultParams returns the reference tuning constants.
func DefaultParams() Params {
	return Params{
		OptimalResponseTime:   30 * time.Second,
		MaxResponseTime:       90 * time.Second,
		MinTimeWeight:         0.6,
		StepUpThreshold:       0.75,
		StepDownThreshold:     0.4,
		MinConsecutiveCorrect: 2,
		LearningRate:          0.1,
		IncorrectImpact:       -0.5,
		DifficultyWeights: map[Difficulty]float64{
			DifficultyEasy:   0.7,
			DifficultyMedium: 1.0,
			DifficultyHard:   1.3,
		},
	}
}

// difficultyWeight returns the weight for d, falling back to 1.0 for
// levels missing from the table.
func (p Params) difficultyWeight(d Difficulty) float64 {
	if w, ok := p.DifficultyWeights[d]; ok {
		return w
	}
	return 1.0
}
