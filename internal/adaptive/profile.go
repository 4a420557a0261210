package adaptive

import "time"

// ScoreDelta returns the proficiency change produced by one response to a
// question of the given difficulty.
func (p Params) ScoreDelta(correct bool, responseTime time.Duration, questionDifficulty Difficulty) float64 {
	base := p.IncorrectImpact
	if correct {
		base = 1.0
	}
	impact := base * p.TimeWeight(responseTime) * p.difficultyWeight(questionDifficulty)
	return impact * p.LearningRate * 100
}

// UpdateSkillProfile applies one response to the profile and returns the
// updated copy. Only the entry for response.SkillArea changes; the input
// profile is left untouched and should be treated as stale by the caller.
// Scores are clamped to [MinSkillScore, MaxSkillScore].
func (e *Engine) UpdateSkillProfile(profile SkillProfile, response UserResponse, questionDifficulty Difficulty) SkillProfile {
	rt := time.Duration(response.ResponseTimeMs) * time.Millisecond
	if rt < 0 {
		rt = 0
	}

	prev := profile.Score(response.SkillArea)
	next := clamp(prev+e.params.ScoreDelta(response.Correct, rt, questionDifficulty), MinSkillScore, MaxSkillScore)

	out := profile.Clone()
	out.Skills[response.SkillArea] = next
	return out
}
