package adaptive

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Difficulty is an assessment difficulty level. Levels are totally
// ordered: easy < medium < hard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// difficultyLevels lists all levels in ascending order.
var difficultyLevels = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ErrUnknownDifficulty is returned when a string does not name a level.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// AllDifficulties returns every level in ascending order.
func AllDifficulties() []Difficulty {
	return slices.Clone(difficultyLevels)
}

// ParseDifficulty converts a string into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if d.rank() < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	return d.rank() >= 0
}

// Step moves d by delta levels, saturating at easy and hard.
// Only the sign of delta matters: a step is always at most one level.
func (d Difficulty) Step(delta int) Difficulty {
	i := d.rank()
	if i < 0 {
		return d
	}
	switch {
	case delta > 0 && i < len(difficultyLevels)-1:
		i++
	case delta < 0 && i > 0:
		i--
	}
	return difficultyLevels[i]
}

// Less reports whether d is strictly easier than other.
func (d Difficulty) Less(other Difficulty) bool {
	return d.rank() < other.rank()
}

func (d Difficulty) rank() int {
	return slices.Index(difficultyLevels, d)
}

// QuestionType is the answer format of a question.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple-choice"
	TypePractical      QuestionType = "practical"
	TypeFreeText       QuestionType = "free-text"
)

// ParseQuestionType accepts the canonical names plus the legacy
// "mcq" and "descriptive" spellings.
func ParseQuestionType(s string) (QuestionType, error) {
	switch s {
	case string(TypeMultipleChoice), "mcq":
		return TypeMultipleChoice, nil
	case string(TypePractical):
		return TypePractical, nil
	case string(TypeFreeText), "descriptive":
		return TypeFreeText, nil
	}
	return "", fmt.Errorf("unknown question type %q", s)
}

// Question is a single catalog item. Questions are immutable once loaded.
type Question struct {
	ID              string        `json:"id"`
	Difficulty      Difficulty    `json:"difficulty"`
	Type            QuestionType  `json:"type"`
	Content         string        `json:"content"`
	Choices         []string      `json:"choices,omitempty"`
	ReferenceAnswer string        `json:"reference_answer,omitempty"`
	SkillArea       string        `json:"skill_area"`
	TimeLimit       time.Duration `json:"time_limit,omitempty"`
	Hints           []string      `json:"hints,omitempty"`
	Explanation     string        `json:"explanation,omitempty"`
}

// UserResponse records one answered question.
type UserResponse struct {
	QuestionID     string `json:"question_id"`
	Answer         string `json:"answer"`
	Correct        bool   `json:"correct"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	SkillArea      string `json:"skill_area"`
}

// SkillProfile is a learner's per-skill proficiency plus answer history.
type SkillProfile struct {
	UserID                string               `json:"user_id"`
	Skills                map[string]float64   `json:"skills"`
	AnsweredQuestions     []string             `json:"answered_questions"`
	AverageResponseTimeMs float64              `json:"average_response_time_ms"`
	QuestionTypeCounts    map[QuestionType]int `json:"question_type_counts"`
	LastAssessmentAt      *time.Time           `json:"last_assessment_at,omitempty"`
	TotalAssessments      int                  `json:"total_assessments"`
}

// NewSkillProfile returns an empty profile for userID.
func NewSkillProfile(userID string) SkillProfile {
	return SkillProfile{
		UserID:             userID,
		Skills:             make(map[string]float64),
		QuestionTypeCounts: make(map[QuestionType]int),
	}
}

// Clone returns a deep copy of p.
func (p SkillProfile) Clone() SkillProfile {
	out := p
	out.Skills = make(map[string]float64, len(p.Skills))
	for k, v := range p.Skills {
		out.Skills[k] = v
	}
	out.AnsweredQuestions = slices.Clone(p.AnsweredQuestions)
	out.QuestionTypeCounts = make(map[QuestionType]int, len(p.QuestionTypeCounts))
	for k, v := range p.QuestionTypeCounts {
		out.QuestionTypeCounts[k] = v
	}
	if p.LastAssessmentAt != nil {
		t := *p.LastAssessmentAt
		out.LastAssessmentAt = &t
	}
	return out
}

// Score returns the proficiency for skill, or DefaultSkillScore if the
// skill has not been seen.
func (p SkillProfile) Score(skill string) float64 {
	if v, ok := p.Skills[skill]; ok {
		return v
	}
	return DefaultSkillScore
}

// HasAnswered reports whether questionID is in the answered set.
func (p SkillProfile) HasAnswered(questionID string) bool {
	return slices.Contains(p.AnsweredQuestions, questionID)
}

// answeredSet returns the answered IDs as a set for bulk lookups.
func (p SkillProfile) answeredSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.AnsweredQuestions))
	for _, id := range p.AnsweredQuestions {
		set[id] = struct{}{}
	}
	return set
}
