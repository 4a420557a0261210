package adaptive

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testQuestions() []Question {
	return []Question{
		{ID: "e1", Difficulty: DifficultyEasy, SkillArea: "Hooks"},
		{ID: "m1", Difficulty: DifficultyMedium, SkillArea: "Hooks"},
		{ID: "m2", Difficulty: DifficultyMedium, SkillArea: "State"},
		{ID: "m3", Difficulty: DifficultyMedium, SkillArea: "State"},
		{ID: "h1", Difficulty: DifficultyHard, SkillArea: "Routing"},
	}
}

func seededEngine() *Engine {
	return NewEngine(DefaultParams(), WithRand(rand.New(rand.NewPCG(1, 2))))
}

func TestSelectNextQuestion_EmptyCatalog(t *testing.T) {
	_, err := seededEngine().SelectNextQuestion(nil, NewSkillProfile("u"), DifficultyMedium)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestSelectNextQuestion_MatchesDifficulty(t *testing.T) {
	e := seededEngine()
	for range 50 {
		sel, err := e.SelectNextQuestion(testQuestions(), NewSkillProfile("u"), DifficultyMedium)
		require.NoError(t, err)
		require.False(t, sel.Complete)
		assert.Equal(t, DifficultyMedium, sel.Question.Difficulty)
	}
}

func TestSelectNextQuestion_TargetsWeakestSkill(t *testing.T) {
	e := seededEngine()
	p := NewSkillProfile("u")
	p.Skills["Hooks"] = 80
	p.Skills["State"] = 30

	for range 50 {
		sel, err := e.SelectNextQuestion(testQuestions(), p, DifficultyMedium)
		require.NoError(t, err)
		assert.Equal(t, "State", sel.Question.SkillArea)
	}
}

func TestSelectNextQuestion_FallsBackWhenWeakestHasNoQuestions(t *testing.T) {
	e := seededEngine()
	p := NewSkillProfile("u")
	p.Skills["Routing"] = 10

	sel, err := e.SelectNextQuestion(testQuestions(), p, DifficultyMedium)
	require.NoError(t, err)
	require.NotNil(t, sel.Question)
	assert.Equal(t, DifficultyMedium, sel.Question.Difficulty)
}

func TestSelectNextQuestion_NeverRepeatsAnswered(t *testing.T) {
	e := seededEngine()
	p := NewSkillProfile("u")
	p.AnsweredQuestions = []string{"m1", "m2"}

	for range 50 {
		sel, err := e.SelectNextQuestion(testQuestions(), p, DifficultyMedium)
		require.NoError(t, err)
		assert.Equal(t, "m3", sel.Question.ID)
	}
}

func TestSelectNextQuestion_ExhaustionIsExplicit(t *testing.T) {
	e := seededEngine()
	p := NewSkillProfile("u")
	p.AnsweredQuestions = []string{"h1"}

	sel, err := e.SelectNextQuestion(testQuestions(), p, DifficultyHard)
	require.NoError(t, err)
	assert.True(t, sel.Complete)
	assert.Nil(t, sel.Question)
}

func TestSelectNextQuestion_DrainsPoolWithoutRepeats(t *testing.T) {
	e := seededEngine()
	p := NewSkillProfile("u")
	seen := map[string]bool{}

	for {
		sel, err := e.SelectNextQuestion(testQuestions(), p, DifficultyMedium)
		require.NoError(t, err)
		if sel.Complete {
			break
		}
		require.False(t, seen[sel.Question.ID], "question %s selected twice", sel.Question.ID)
		seen[sel.Question.ID] = true
		p.AnsweredQuestions = append(p.AnsweredQuestions, sel.Question.ID)
	}
	assert.Len(t, seen, 3)
}

func TestWeakestSkill_TieBreaksByName(t *testing.T) {
	p := NewSkillProfile("u")
	p.Skills["Zustand"] = 40
	p.Skills["Context"] = 40
	p.Skills["Redux"] = 40
	p.Skills["Hooks"] = 90

	for range 20 {
		got, ok := WeakestSkill(p)
		require.True(t, ok)
		assert.Equal(t, "Context", got)
	}

	_, ok := WeakestSkill(NewSkillProfile("u"))
	assert.False(t, ok)
}

func TestSelectInitialQuestion_WidensToNearestLevel(t *testing.T) {
	e := seededEngine()
	qs := []Question{
		{ID: "e1", Difficulty: DifficultyEasy, SkillArea: "A"},
		{ID: "h1", Difficulty: DifficultyHard, SkillArea: "A"},
	}

	sel, d, err := e.SelectInitialQuestion(qs, NewSkillProfile("u"), DifficultyMedium)
	require.NoError(t, err)
	assert.Equal(t, DifficultyEasy, d)
	assert.Equal(t, "e1", sel.Question.ID)

	p := NewSkillProfile("u")
	p.AnsweredQuestions = []string{"e1", "h1"}
	sel, _, err = e.SelectInitialQuestion(qs, p, DifficultyMedium)
	require.NoError(t, err)
	assert.True(t, sel.Complete)
}

func TestWidenFrom(t *testing.T) {
	assert.Equal(t, []Difficulty{DifficultyMedium, DifficultyEasy, DifficultyHard}, widenFrom(DifficultyMedium))
	assert.Equal(t, []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}, widenFrom(DifficultyEasy))
	assert.Equal(t, []Difficulty{DifficultyHard, DifficultyMedium, DifficultyEasy}, widenFrom(DifficultyHard))
}
