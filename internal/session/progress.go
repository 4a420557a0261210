package session

// SkillTally tracks per-skill performance within a single session.
type SkillTally struct {
	SkillArea   string  `json:"skill_area"`
	Attempted   int     `json:"attempted"`
	Correct     int     `json:"correct"`
	ScoreBefore float64 `json:"score_before"`
	ScoreAfter  float64 `json:"score_after"`
}

// Record adds one graded response to the tally.
func (t *SkillTally) Record(correct bool, scoreAfter float64) {
	t.Attempted++
	if correct {
		t.Correct++
	}
	t.ScoreAfter = scoreAfter
}

// Accuracy returns Correct / Attempted, or 0 before any attempt.
func (t *SkillTally) Accuracy() float64 {
	if t.Attempted == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Attempted)
}

// Delta is the score change over the session.
func (t *SkillTally) Delta() float64 {
	return t.ScoreAfter - t.ScoreBefore
}

// recentPerformance returns the fraction of correct answers among the
// last window responses.
func recentPerformance(records []Record, window int) float64 {
	if len(records) == 0 || window <= 0 {
		return 0
	}
	start := max(len(records)-window, 0)
	correct := 0
	for _, r := range records[start:] {
		if r.Response.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(records)-start)
}
