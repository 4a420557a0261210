package adaptive

import (
	"errors"
	"sort"
)

// ErrEmptyCatalog is returned when selection is attempted on an empty
// question list.
var ErrEmptyCatalog = errors.New("question catalog is empty")

// Selection is the result of choosing the next question. Exactly one of
// Question and Complete is set.
type Selection struct {
	Question *Question
	// Complete reports that no eligible question remains and the
	// assessment should end.
	Complete bool
}

// WeakestSkill returns the skill area with the lowest score. Ties are
// broken by ascending skill name. ok is false when the profile has no
// scores.
func WeakestSkill(profile SkillProfile) (skill string, ok bool) {
	if len(profile.Skills) == 0 {
		return "", false
	}
	names := make([]string, 0, len(profile.Skills))
	for name := range profile.Skills {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := profile.Skills[names[i]], profile.Skills[names[j]]
		if si != sj {
			return si < sj
		}
		return names[i] < names[j]
	})
	return names[0], true
}

// SelectNextQuestion picks the next question at currentDifficulty that
// the profile has not answered, preferring the profile's weakest skill
// area. It reports Complete when no such question exists.
func (e *Engine) SelectNextQuestion(questions []Question, profile SkillProfile, currentDifficulty Difficulty) (Selection, error) {
	if len(questions) == 0 {
		return Selection{}, ErrEmptyCatalog
	}

	eligible := eligibleQuestions(questions, profile, currentDifficulty)
	if len(eligible) == 0 {
		return Selection{Complete: true}, nil
	}

	pool := eligible
	if weakest, ok := WeakestSkill(profile); ok {
		var targeted []*Question
		for _, q := range eligible {
			if q.SkillArea == weakest {
				targeted = append(targeted, q)
			}
		}
		if len(targeted) > 0 {
			pool = targeted
		}
	}

	return Selection{Question: pool[e.intn(len(pool))]}, nil
}

// SelectInitialQuestion behaves like SelectNextQuestion at start, but
// when start has nothing eligible it widens the search to the nearest
// other levels (easier first on ties) so a session can begin on a
// sparse catalog.
func (e *Engine) SelectInitialQuestion(questions []Question, profile SkillProfile, start Difficulty) (Selection, Difficulty, error) {
	for _, d := range widenFrom(start) {
		sel, err := e.SelectNextQuestion(questions, profile, d)
		if err != nil {
			return Selection{}, start, err
		}
		if !sel.Complete {
			return sel, d, nil
		}
	}
	return Selection{Complete: true}, start, nil
}

func eligibleQuestions(questions []Question, profile SkillProfile, d Difficulty) []*Question {
	answered := profile.answeredSet()
	var out []*Question
	for i := range questions {
		q := &questions[i]
		if q.Difficulty != d {
			continue
		}
		if _, seen := answered[q.ID]; seen {
			continue
		}
		out = append(out, q)
	}
	return out
}

// widenFrom orders all levels by distance from start.
func widenFrom(start Difficulty) []Difficulty {
	if !start.Valid() {
		return AllDifficulties()
	}
	order := []Difficulty{start}
	lo, hi := start, start
	for len(order) < len(difficultyLevels) {
		if next := lo.Step(-1); next != lo {
			order = append(order, next)
			lo = next
		}
		if next := hi.Step(+1); next != hi {
			order = append(order, next)
			hi = next
		}
	}
	return order
}
