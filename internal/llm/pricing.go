package llm

import (
	"regexp"
	"strings"
)

// ModelCost holds USD pricing per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

var dateSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2}|latest|\d{3})$`)

// LookupCost returns pricing for a model ID, or nil if unknown. Gateway
// prefixes ("openai/gpt-4o") and release suffixes ("-20250929",
// "-latest", "-001") are ignored when the exact ID is not listed.
func LookupCost(modelID string) *ModelCost {
	candidates := []string{modelID}
	if i := strings.LastIndex(modelID, "/"); i >= 0 {
		candidates = append(candidates, modelID[i+1:])
	}
	for _, id := range candidates {
		if c, ok := modelCosts[id]; ok {
			return &c
		}
		if trimmed := dateSuffix.ReplaceAllString(id, ""); trimmed != id {
			if c, ok := modelCosts[trimmed]; ok {
				return &c
			}
		}
	}
	return nil
}

// modelCosts covers the models a grading deployment is likely to use.
// Prices as published by the vendors, 2026-02.
var modelCosts = map[string]ModelCost{
	// Anthropic
	"claude-3-5-haiku":  {0.8, 4},
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
	"claude-opus-4-1":   {15, 75},
	"claude-opus-4-5":   {5, 25},

	// OpenAI
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o4-mini":      {1.1, 4.4},

	// Google
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-pro":        {1.25, 10},
}
