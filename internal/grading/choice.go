package grading

import (
	"strconv"
	"strings"

	"github.com/abhisek/adaptiq/internal/adaptive"
)

// CheckChoice reports whether answer selects q's reference choice. The
// answer may be the choice text (compared trimmed and case-insensitively)
// or its 1-based position in q.Choices.
func CheckChoice(q adaptive.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	ref := strings.TrimSpace(q.ReferenceAnswer)
	if answer == "" || ref == "" {
		return false
	}
	if strings.EqualFold(answer, ref) {
		return true
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(q.Choices) {
		return strings.EqualFold(strings.TrimSpace(q.Choices[n-1]), ref)
	}
	return false
}

// ChoiceIndex returns the 0-based index of q's reference answer among its
// choices, or -1.
func ChoiceIndex(q adaptive.Question) int {
	ref := strings.TrimSpace(q.ReferenceAnswer)
	for i, c := range q.Choices {
		if strings.EqualFold(strings.TrimSpace(c), ref) {
			return i
		}
	}
	return -1
}
