package session

import (
	"maps"
	"sort"
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/badges"
)

// Result holds the data displayed once an assessment is complete.
type Result struct {
	AssessmentID string `json:"assessment_id"`
	UserID       string `json:"user_id"`
	// Score is the percentage of correct responses.
	Score            float64                 `json:"score"`
	SkillBreakdown   map[string]float64      `json:"skill_breakdown"`
	SkillTallies     []SkillTally            `json:"skill_tallies"`
	TimeSpentMs      int64                   `json:"time_spent_ms"`
	Responses        []adaptive.UserResponse `json:"responses"`
	RecommendedAreas []string                `json:"recommended_areas"`
	NextDifficulty   adaptive.Difficulty     `json:"next_difficulty"`
	BestStreak       int                     `json:"best_streak"`
	Badges           []badges.Badge          `json:"badges"`
	CompletedAt      time.Time               `json:"completed_at"`
}

// Correct returns the number of correct responses.
func (r *Result) Correct() int {
	n := 0
	for _, resp := range r.Responses {
		if resp.Correct {
			n++
		}
	}
	return n
}

// Result builds the assessment result. The first call also stamps the
// working profile (TotalAssessments and LastAssessmentAt); later calls
// return the same result. It returns ErrSessionActive until the session
// is complete.
func (s *Session) Result() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseComplete {
		return nil, ErrSessionActive
	}
	if s.result != nil {
		return s.result, nil
	}

	now := s.now()
	r := &Result{
		AssessmentID:     s.id,
		UserID:           s.profile.UserID,
		SkillBreakdown:   maps.Clone(s.profile.Skills),
		NextDifficulty:   s.difficulty,
		BestStreak:       s.bestStreak,
		CompletedAt:      now,
		Responses:        make([]adaptive.UserResponse, 0, len(s.records)),
		RecommendedAreas: recommendedAreas(s.profile.Skills, s.cfg.RecommendBelow),
	}

	correct := 0
	for _, rec := range s.records {
		r.Responses = append(r.Responses, rec.Response)
		r.TimeSpentMs += rec.Response.ResponseTimeMs
		if rec.Response.Correct {
			correct++
		}
	}
	if len(s.records) > 0 {
		r.Score = float64(correct) / float64(len(s.records)) * 100
	}

	for _, t := range s.tallies {
		r.SkillTallies = append(r.SkillTallies, *t)
	}
	sort.Slice(r.SkillTallies, func(i, j int) bool {
		return r.SkillTallies[i].SkillArea < r.SkillTallies[j].SkillArea
	})

	r.Badges = badges.Evaluate(badges.Input{
		UserID:           r.UserID,
		AssessmentID:     r.AssessmentID,
		PriorAssessments: s.priorAssessments,
		Score:            r.Score,
		Responses:        len(s.records),
		BestStreak:       s.bestStreak,
		Skills:           s.profile.Skills,
		MaxReached:       s.maxReached,
	}, now)

	if len(s.records) > 0 {
		s.profile.TotalAssessments++
		s.profile.LastAssessmentAt = &now
	}

	s.result = r
	s.log.Info("assessment complete",
		"session", s.id, "user", r.UserID, "score", r.Score,
		"responses", len(r.Responses), "badges", len(r.Badges))
	return r, nil
}

// recommendedAreas returns the skill areas scoring below threshold,
// sorted by name.
func recommendedAreas(skills map[string]float64, threshold float64) []string {
	out := []string{}
	for area, score := range skills {
		if score < threshold {
			out = append(out, area)
		}
	}
	sort.Strings(out)
	return out
}
