package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/llm"
)

// Feedback explains what an incorrect answer missed.
type Feedback struct {
	Summary       string   `json:"feedback"`
	MissingPoints []string `json:"missing_points"`
}

// FeedbackSchema is the structured reply requested from the LLM.
var FeedbackSchema = &llm.Schema{
	Name:        "answer-feedback",
	Description: "Short feedback on an incorrect answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback": map[string]any{
				"type":        "string",
				"description": "Two sentences at most, addressed to the learner.",
			},
			"missing_points": map[string]any{
				"type":        "array",
				"description": "Key ideas from the reference answer that the learner left out.",
				"items":       map[string]any{"type": "string"},
			},
		},
		"required":             []any{"feedback", "missing_points"},
		"additionalProperties": false,
	},
}

// Explainer produces Feedback for wrong answers.
type Explainer struct {
	provider llm.Provider
	cfg      Config
}

// NewExplainer returns nil when provider is nil so callers can treat
// feedback as optional with a single nil check.
func NewExplainer(provider llm.Provider) *Explainer {
	if provider == nil {
		return nil
	}
	return &Explainer{provider: provider, cfg: Config{MaxTokens: 400, Temperature: 0.3}}
}

// Explain asks the LLM why answer falls short of q's reference answer.
func (e *Explainer) Explain(ctx context.Context, q adaptive.Question, answer string) (*Feedback, error) {
	if e == nil {
		return nil, llm.ErrNoProvider
	}

	var buf bytes.Buffer
	if err := feedbackTemplate.Execute(&buf, struct {
		Q      adaptive.Question
		Answer string
	}{q, answer}); err != nil {
		return nil, fmt.Errorf("build feedback prompt: %w", err)
	}

	req := llm.UserRequest(feedbackSystemPrompt, buf.String(), e.cfg.MaxTokens)
	req.Schema = FeedbackSchema
	req.Temperature = e.cfg.Temperature

	resp, err := e.provider.Generate(llm.WithPurpose(ctx, llm.PurposeFeedback), req)
	if err != nil {
		return nil, fmt.Errorf("LLM feedback failed: %w", err)
	}

	var fb Feedback
	if err := json.Unmarshal(resp.Content, &fb); err != nil {
		return nil, fmt.Errorf("parse feedback response: %w", err)
	}
	return &fb, nil
}

const feedbackSystemPrompt = `You are a patient senior engineer reviewing a learner's answer in a skills assessment. The answer was judged incorrect or incomplete.

Instructions:
- Say briefly what the answer got wrong or left out, without repeating the whole reference answer.
- List the missing key points, one short phrase each.
- Do not grade the answer and do not mention a score.`

var feedbackTemplate = template.Must(template.New("feedback").Parse(`Skill area: {{.Q.SkillArea}}
Difficulty: {{.Q.Difficulty}}
Question: {{.Q.Content}}
{{if .Q.Choices}}Choices:
{{range .Q.Choices}}- {{.}}
{{end}}{{end}}Reference answer: {{.Q.ReferenceAnswer}}
Learner answer: {{.Answer}}`))
