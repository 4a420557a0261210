// Package catalog loads assessment questions from versioned YAML files
// and answers queries over the loaded set.
package catalog

import (
	"fmt"
	"slices"
	"sort"

	"github.com/abhisek/adaptiq/internal/adaptive"
)

// Catalog is an immutable, validated set of questions.
type Catalog struct {
	questions []adaptive.Question
	byID      map[string]int
}

// New validates questions and builds a Catalog. The slice is copied.
func New(questions []adaptive.Question) (*Catalog, error) {
	if err := Validate(questions); err != nil {
		return nil, err
	}
	c := &Catalog{
		questions: slices.Clone(questions),
		byID:      make(map[string]int, len(questions)),
	}
	for i, q := range c.questions {
		c.byID[q.ID] = i
	}
	return c, nil
}

// Questions returns a copy of every question in load order.
func (c *Catalog) Questions() []adaptive.Question {
	return slices.Clone(c.questions)
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Get looks a question up by ID.
func (c *Catalog) Get(id string) (adaptive.Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return adaptive.Question{}, false
	}
	return c.questions[i], true
}

// SkillAreas returns the distinct skill areas, sorted.
func (c *Catalog) SkillAreas() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, q := range c.questions {
		if _, ok := seen[q.SkillArea]; !ok {
			seen[q.SkillArea] = struct{}{}
			out = append(out, q.SkillArea)
		}
	}
	sort.Strings(out)
	return out
}

// Count is the number of questions for one skill area and difficulty.
type Count struct {
	SkillArea  string              `json:"skill_area"`
	Difficulty adaptive.Difficulty `json:"difficulty"`
	Questions  int                 `json:"questions"`
}

// CountBy tallies questions per skill area and difficulty, ordered by
// skill area then ascending difficulty. Empty combinations are omitted.
func (c *Catalog) CountBy() []Count {
	type key struct {
		skill string
		d     adaptive.Difficulty
	}
	tally := make(map[key]int)
	for _, q := range c.questions {
		tally[key{q.SkillArea, q.Difficulty}]++
	}

	var out []Count
	for _, skill := range c.SkillAreas() {
		for _, d := range adaptive.AllDifficulties() {
			if n := tally[key{skill, d}]; n > 0 {
				out = append(out, Count{SkillArea: skill, Difficulty: d, Questions: n})
			}
		}
	}
	return out
}

// Filter returns the questions matching skillArea (empty matches all).
func (c *Catalog) Filter(skillArea string) []adaptive.Question {
	if skillArea == "" {
		return c.Questions()
	}
	var out []adaptive.Question
	for _, q := range c.questions {
		if q.SkillArea == skillArea {
			out = append(out, q)
		}
	}
	return out
}

// String implements fmt.Stringer for log lines.
func (c *Catalog) String() string {
	return fmt.Sprintf("catalog(%d questions, %d skill areas)", len(c.questions), len(c.SkillAreas()))
}
