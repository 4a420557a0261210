// Package badges awards achievement badges at the end of an assessment.
package badges

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
)

// Kind identifies a badge.
type Kind string

const (
	KindFirstAssessment Kind = "first-assessment"
	KindPerfectScore    Kind = "perfect-score"
	KindHotStreak       Kind = "hot-streak"
	KindSkillMaster     Kind = "skill-master"
	KindClimber         Kind = "climber"
)

// Award thresholds.
const (
	PerfectScoreMinResponses = 3
	HotStreakLength          = 5
	SkillMasterScore         = 90.0
)

// AllKinds returns every badge kind in display order.
func AllKinds() []Kind {
	return []Kind{KindFirstAssessment, KindPerfectScore, KindHotStreak, KindSkillMaster, KindClimber}
}

// DisplayName returns a human-readable label for the badge.
func (k Kind) DisplayName() string {
	switch k {
	case KindFirstAssessment:
		return "First Steps"
	case KindPerfectScore:
		return "Flawless"
	case KindHotStreak:
		return "Hot Streak"
	case KindSkillMaster:
		return "Skill Master"
	case KindClimber:
		return "Climber"
	default:
		return string(k)
	}
}

// Description explains what earned the badge.
func (k Kind) Description() string {
	switch k {
	case KindFirstAssessment:
		return "Completed a first assessment"
	case KindPerfectScore:
		return "Answered every question correctly"
	case KindHotStreak:
		return "Answered five questions in a row correctly"
	case KindSkillMaster:
		return "Reached 90 in a skill area"
	case KindClimber:
		return "Reached the hard difficulty level"
	default:
		return ""
	}
}

// Icon returns the display icon for the badge.
func (k Kind) Icon() string {
	switch k {
	case KindFirstAssessment:
		return "🎓"
	case KindPerfectScore:
		return "🏆"
	case KindHotStreak:
		return "⚡"
	case KindSkillMaster:
		return "💎"
	case KindClimber:
		return "⛰"
	default:
		return "✦"
	}
}

// Badge is an awarded badge. Hash lets a third party check that the
// badge was issued for this user and assessment.
type Badge struct {
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	AwardedAt time.Time `json:"awarded_at"`
}

// Input is the assessment outcome badges are judged on.
type Input struct {
	UserID       string
	AssessmentID string
	// PriorAssessments counts completed assessments before this one.
	PriorAssessments int
	// Score is the percentage of correct responses.
	Score      float64
	Responses  int
	BestStreak int
	Skills     map[string]float64
	MaxReached adaptive.Difficulty
}

// Evaluate returns the badges earned by in, in AllKinds order.
func Evaluate(in Input, now time.Time) []Badge {
	var out []Badge
	award := func(k Kind) {
		out = append(out, Badge{
			Kind:      k,
			Name:      k.DisplayName(),
			Hash:      Hash(in.UserID, in.AssessmentID, k),
			AwardedAt: now,
		})
	}

	if in.PriorAssessments == 0 && in.Responses > 0 {
		award(KindFirstAssessment)
	}
	if in.Responses >= PerfectScoreMinResponses && in.Score >= 100 {
		award(KindPerfectScore)
	}
	if in.BestStreak >= HotStreakLength {
		award(KindHotStreak)
	}
	for _, v := range in.Skills {
		if v >= SkillMasterScore {
			award(KindSkillMaster)
			break
		}
	}
	if in.MaxReached == adaptive.DifficultyHard {
		award(KindClimber)
	}
	return out
}

// Hash returns the hex SHA-256 verification hash for a badge.
func Hash(userID, assessmentID string, k Kind) string {
	h := sha256.New()
	for _, part := range []string{userID, assessmentID, string(k)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether b was issued for userID and assessmentID.
func Verify(b Badge, userID, assessmentID string) bool {
	return b.Hash == Hash(userID, assessmentID, b.Kind)
}
