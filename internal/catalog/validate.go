package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/grading"
)

// ErrEmpty is returned when a catalog has no questions.
var ErrEmpty = errors.New("catalog has no questions")

// Validate applies the semantic rules the JSON schema cannot express:
// unique IDs, choices for multiple-choice questions, a reference answer
// for every question and a multiple-choice reference that is one of the
// choices. All problems are reported together.
func Validate(questions []adaptive.Question) error {
	if len(questions) == 0 {
		return ErrEmpty
	}

	var errs []error
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		if q.ID == "" {
			errs = append(errs, errors.New("question with empty id"))
			continue
		}
		if _, dup := seen[q.ID]; dup {
			errs = append(errs, fmt.Errorf("question %q: duplicate id", q.ID))
		}
		seen[q.ID] = struct{}{}

		if err := validateQuestion(q); err != nil {
			errs = append(errs, fmt.Errorf("question %q: %w", q.ID, err))
		}
	}
	return errors.Join(errs...)
}

func validateQuestion(q adaptive.Question) error {
	if !q.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", adaptive.ErrUnknownDifficulty, q.Difficulty)
	}
	if strings.TrimSpace(q.SkillArea) == "" {
		return errors.New("skill area is required")
	}
	if strings.TrimSpace(q.Content) == "" {
		return errors.New("content is required")
	}
	if strings.TrimSpace(q.ReferenceAnswer) == "" {
		return errors.New("reference answer is required")
	}
	if q.TimeLimit < 0 {
		return errors.New("time limit must be positive")
	}

	switch q.Type {
	case adaptive.TypeMultipleChoice:
		if len(q.Choices) < 2 {
			return errors.New("multiple-choice questions need at least two choices")
		}
		if grading.ChoiceIndex(q) < 0 {
			return fmt.Errorf("answer %q is not one of the choices", q.ReferenceAnswer)
		}
	case adaptive.TypePractical, adaptive.TypeFreeText:
		if len(q.Choices) > 0 {
			return fmt.Errorf("%s questions cannot have choices", q.Type)
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}

	if slices.Contains(q.Hints, "") {
		return errors.New("hints cannot be empty")
	}
	return nil
}
