package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const validCatalog = `version: v1.0.0
name: Go
questions:
  - id: go-zero-value
    difficulty: easy
    type: multiple-choice
    skill_area: Go
    content: What is the zero value of a map?
    choices:
      - nil
      - an empty map
    answer: nil
  - id: go-channels
    difficulty: medium
    type: free-text
    skill_area: Go
    content: What does closing a channel signal to receivers?
    answer: That no more values will be sent.
`

func TestScoreBar(t *testing.T) {
	assert.Equal(t, strings.Repeat("░", 10), scoreBar(0, 10))
	assert.Equal(t, strings.Repeat("█", 5)+strings.Repeat("░", 5), scoreBar(50, 10))
	assert.Equal(t, strings.Repeat("█", 10), scoreBar(150, 10))
	assert.Equal(t, strings.Repeat("░", 10), scoreBar(-5, 10))
}

func TestPrintProfile(t *testing.T) {
	last := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := adaptive.NewSkillProfile("ada")
	p.Skills["React Hooks"] = 72
	p.Skills["JavaScript"] = 35
	p.AnsweredQuestions = []string{"q1", "q2", "q3"}
	p.AverageResponseTimeMs = 4200
	p.QuestionTypeCounts[adaptive.TypeFreeText] = 1
	p.QuestionTypeCounts[adaptive.TypeMultipleChoice] = 2
	p.TotalAssessments = 2
	p.LastAssessmentAt = &last

	results := []session.Result{{
		Score:          66.7,
		TimeSpentMs:    90_000,
		Responses:      make([]adaptive.UserResponse, 3),
		NextDifficulty: adaptive.DifficultyHard,
		CompletedAt:    last,
	}}

	var buf bytes.Buffer
	printProfile(&buf, p, results)
	out := buf.String()

	assert.Contains(t, out, "Profile: ada")
	assert.Contains(t, out, "Assessments:   2")
	assert.Contains(t, out, "Answered:      3 questions")
	assert.Contains(t, out, "Avg response:  4.2s")
	assert.Contains(t, out, "free-text 1, multiple-choice 2")
	assert.Contains(t, out, "Focus next on: JavaScript")
	assert.Contains(t, out, " 66.7%")
	assert.Contains(t, out, "next hard")
	assert.Less(t, strings.Index(out, "JavaScript"), strings.Index(out, "React Hooks"),
		"skills are listed by name")
}

func TestPrintProfileWithoutScores(t *testing.T) {
	var buf bytes.Buffer
	printProfile(&buf, adaptive.NewSkillProfile("new"), nil)
	out := buf.String()

	assert.Contains(t, out, "last never")
	assert.Contains(t, out, "No skill scores yet.")
	assert.NotContains(t, out, "Focus next on")
	assert.NotContains(t, out, "Recent results")
}

func TestPrintProfileList(t *testing.T) {
	var buf bytes.Buffer
	printProfileList(&buf, nil)
	assert.Contains(t, buf.String(), "No profiles found.")

	p := adaptive.NewSkillProfile("ada")
	p.Skills["Hooks"] = 20
	p.Skills["JSX"] = 80
	buf.Reset()
	printProfileList(&buf, []adaptive.SkillProfile{p, adaptive.NewSkillProfile("bob")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "ada"))
	assert.True(t, strings.HasSuffix(lines[2], "Hooks"))
	assert.True(t, strings.HasSuffix(lines[3], "-"))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := confirm(strings.NewReader(tt.input), &out, "Delete?")
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Equal(t, "Delete? [y/N] ", out.String())
	}
}

func TestPrintLLMEvents(t *testing.T) {
	var buf bytes.Buffer
	printLLMEvents(&buf, nil)
	assert.Contains(t, buf.String(), "No LLM events found.")

	buf.Reset()
	printLLMEvents(&buf, []store.LLMEventRecord{
		{
			ID:        7,
			Timestamp: time.Now(),
			LLMRequestEventData: store.LLMRequestEventData{
				Purpose:     "answer-grading",
				Model:       "a-very-long-model-identifier-that-overflows",
				InputTokens: 120,
				Success:     true,
			},
		},
		{ID: 8, LLMRequestEventData: store.LLMRequestEventData{Purpose: "answer-feedback"}},
	})
	out := buf.String()

	assert.Contains(t, out, "answer-grading")
	assert.Contains(t, out, "a-very-long-model-identifier")
	assert.NotContains(t, out, "overflows")
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "✗")
}

func TestPrintProblemsSplitsJoinedErrors(t *testing.T) {
	var buf bytes.Buffer
	printProblems(&buf, errors.Join(errors.New("first"), errors.New("second")))
	assert.Equal(t, "✗ first\n✗ second\n", buf.String())

	buf.Reset()
	printProblems(&buf, errors.New("single"))
	assert.Equal(t, "✗ single\n", buf.String())
}

func TestCatalogValidate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.yaml"), []byte(validCatalog), 0o644))

	var buf bytes.Buffer
	catalogValidateCmd.SetOut(&buf)
	t.Cleanup(func() { catalogValidateCmd.SetOut(nil) })

	require.NoError(t, catalogValidateCmd.RunE(catalogValidateCmd, []string{dir}))
	out := buf.String()
	assert.Contains(t, out, "2 questions in 1 skill areas")
	assert.Contains(t, out, "easy")
	assert.Contains(t, out, "medium")
}

func TestCatalogValidateReportsErrors(t *testing.T) {
	dir := t.TempDir()
	broken := strings.Replace(validCatalog, "difficulty: easy", "difficulty: impossible", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.yaml"), []byte(broken), 0o644))

	var buf bytes.Buffer
	catalogValidateCmd.SetOut(&buf)
	t.Cleanup(func() { catalogValidateCmd.SetOut(nil) })

	err := catalogValidateCmd.RunE(catalogValidateCmd, []string{dir})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "✗")
}

func TestLoadCatalogFallsBackToBuiltIn(t *testing.T) {
	t.Setenv("ADAPTIQ_CATALOG_DIR", "")
	c, err := loadCatalog(catalogListCmd)
	require.NoError(t, err)
	assert.Positive(t, c.Len())
}

func TestLoadCatalogFromEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.yaml"), []byte(validCatalog), 0o644))
	t.Setenv("ADAPTIQ_CATALOG_DIR", dir)

	c, err := loadCatalog(catalogListCmd)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"Go"}, c.SkillAreas())
}
