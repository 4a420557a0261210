// Package grading scores learner answers: multiple-choice answers by
// direct comparison, free-text and practical answers through an LLM.
package grading

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/logger"
)

const (
	// CorrectThreshold is the score at or above which an answer counts
	// as correct.
	CorrectThreshold = 0.7

	// FallbackScore is returned whenever the grader cannot produce a
	// score of its own.
	FallbackScore = 0.5
)

// Evaluation is the outcome of grading one answer. Fallback marks a
// FallbackScore that was substituted after a failure, as opposed to a
// genuine mid-range score.
type Evaluation struct {
	Score    float64 `json:"score"`
	Fallback bool    `json:"fallback"`
	Reason   string  `json:"reason,omitempty"`
	Raw      string  `json:"raw,omitempty"`
}

// Correct reports whether the score meets CorrectThreshold.
func (e Evaluation) Correct() bool {
	return e.Score >= CorrectThreshold
}

func fallback(reason, raw string) Evaluation {
	return Evaluation{Score: FallbackScore, Fallback: true, Reason: reason, Raw: raw}
}

// Config tunes the grading prompt.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns settings for a short, deterministic reply.
func DefaultConfig() Config {
	return Config{MaxTokens: 16, Temperature: 0}
}

// Grader scores answers. A nil provider is allowed; every LLM-graded
// answer then receives the fallback score.
type Grader struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

func NewGrader(provider llm.Provider, cfg Config, log *logger.Logger) *Grader {
	if log == nil {
		log = logger.Nop()
	}
	return &Grader{provider: provider, cfg: cfg, log: log}
}

// Grade scores answer against q. Multiple-choice questions never call the
// LLM. A blank free-text answer scores zero without a call.
func (g *Grader) Grade(ctx context.Context, q adaptive.Question, answer string) Evaluation {
	if q.Type == adaptive.TypeMultipleChoice {
		if CheckChoice(q, answer) {
			return Evaluation{Score: 1}
		}
		return Evaluation{Score: 0}
	}
	if strings.TrimSpace(answer) == "" {
		return Evaluation{Score: 0, Reason: "blank answer"}
	}
	return g.EvaluateDescriptiveAnswer(ctx, answer, q.ReferenceAnswer)
}

// EvaluateDescriptiveAnswer asks the LLM to rate answer against reference
// on [0,1]. It never returns an error: any failure yields the fallback
// score with the reason recorded. The caller owns the deadline through
// ctx.
func (g *Grader) EvaluateDescriptiveAnswer(ctx context.Context, answer, reference string) Evaluation {
	if g.provider == nil {
		return fallback(llm.ErrNoProvider.Error(), "")
	}

	prompt, err := buildGradingPrompt(answer, reference)
	if err != nil {
		return fallback(fmt.Sprintf("build prompt: %v", err), "")
	}

	req := llm.UserRequest(gradingSystemPrompt, prompt, g.cfg.MaxTokens)
	req.Temperature = g.cfg.Temperature

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, llm.PurposeGrading), req)
	if err != nil {
		g.log.Warn("grading fallback", "reason", "provider error", "error", err)
		return fallback(err.Error(), "")
	}

	raw := resp.Text()
	score, err := ParseScore(raw)
	if err != nil {
		g.log.Warn("grading fallback", "reason", "unparseable reply", "raw", raw)
		return fallback(err.Error(), raw)
	}
	return Evaluation{Score: score, Raw: raw}
}

// ErrNoScore is returned by ParseScore when the reply has no number.
var ErrNoScore = errors.New("no numeric score in reply")

var numberPattern = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// ParseScore extracts the first number in reply and clamps it to [0,1].
func ParseScore(reply string) (float64, error) {
	tok := numberPattern.FindString(reply)
	if tok == "" {
		return 0, ErrNoScore
	}
	v, err := strconv.ParseFloat(tok, 64)
	// Overflow yields ±Inf with ErrRange, which the clamp below handles.
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q", ErrNoScore, tok)
	}
	return min(max(v, 0), 1), nil
}

const gradingSystemPrompt = `You are an assessment evaluator for software engineering skills. You compare a learner's answer with a reference answer and rate its correctness and completeness.

Reply with a single number between 0 and 1 and nothing else. 1 means the answer covers everything in the reference, 0 means it is wrong or unrelated.`

var gradingTemplate = template.Must(template.New("grading").Parse(`Reference answer:
{{.Reference}}

Learner answer:
{{.Answer}}

Score (0 to 1):`))

func buildGradingPrompt(answer, reference string) (string, error) {
	var buf bytes.Buffer
	err := gradingTemplate.Execute(&buf, struct{ Answer, Reference string }{answer, reference})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
