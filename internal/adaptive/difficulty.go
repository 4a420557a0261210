package adaptive

import "time"

// TimeWeight maps a response time to a multiplier in
// [MinTimeWeight, 1]. Responses up to OptimalResponseTime get 1,
// responses at or beyond MaxResponseTime get MinTimeWeight, and the
// weight falls linearly in between.
func (p Params) TimeWeight(responseTime time.Duration) float64 {
	if responseTime <= p.OptimalResponseTime {
		return 1.0
	}
	if responseTime >= p.MaxResponseTime {
		return p.MinTimeWeight
	}
	span := float64(p.MaxResponseTime - p.OptimalResponseTime)
	over := float64(responseTime - p.OptimalResponseTime)
	return 1.0 - (over/span)*(1.0-p.MinTimeWeight)
}

// CalculateNextDifficulty returns the difficulty for the next question.
//
// recentPerformance is the caller's fraction of correct answers in [0,1];
// it is weighted by response time. Difficulty rises one level when the
// weighted score exceeds StepUpThreshold and the learner has at least
// MinConsecutiveCorrect correct answers in a row, falls one level when the
// score is below StepDownThreshold, and is otherwise unchanged.
func (e *Engine) CalculateNextDifficulty(current Difficulty, recentPerformance float64, responseTime time.Duration, consecutiveCorrect int) Difficulty {
	if responseTime < 0 {
		responseTime = 0
	}
	score := clamp(recentPerformance, 0, 1) * e.params.TimeWeight(responseTime)

	switch {
	case score > e.params.StepUpThreshold && consecutiveCorrect >= e.params.MinConsecutiveCorrect:
		return current.Step(+1)
	case score < e.params.StepDownThreshold:
		return current.Step(-1)
	default:
		return current
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
