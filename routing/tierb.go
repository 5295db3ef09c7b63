package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
)

// llmDecision is the JSON shape the Tier B prompt demands.
type llmDecision struct {
	Route          string `json:"route"`
	SpecialistHint string `json:"specialist_prompt"`
	ToolHint       string `json:"tool_hint"`
}

const tierBSystemPrompt = `You are a routing classifier for a small local-model orchestrator.
Classify the user's request into exactly one route. Respond with ONLY a single JSON object, no commentary, no markdown fences:
{"route": "DIRECT"|"TOOL"|"REASONER", "specialist_prompt": "<rephrased request for a specialist model, or empty>", "tool_hint": "<tool name if route is TOOL, else empty>"}`

// tierB asks the model to classify text when no Tier A rule matched. It
// extracts the JSON object between the first '{' and the last '}' in the
// completion, a tolerant-parse strategy against models that wrap JSON in
// prose or markdown fences.
func tierB(ctx context.Context, gateway aiclient.Gateway, text string) (Decision, error) {
	resp, err := gateway.Complete(ctx, text, aiclient.Options{
		Temperature:  0,
		SystemPrompt: tierBSystemPrompt,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("routing: tier B completion failed: %w", err)
	}

	raw, ok := extractJSONObject(resp.Content)
	if !ok {
		return Decision{}, fmt.Errorf("routing: tier B response had no JSON object")
	}

	var parsed llmDecision
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Decision{}, fmt.Errorf("routing: tier B JSON unmarshal failed: %w", err)
	}

	switch Kind(strings.ToUpper(parsed.Route)) {
	case Tool:
		if parsed.ToolHint == "" {
			return Decision{}, fmt.Errorf("routing: tier B declared TOOL with no tool_hint")
		}
		argHint := parsed.SpecialistHint
		if argHint == "" {
			argHint = text
		}
		return toolDecision(parsed.ToolHint, argHint), nil
	case Reasoner:
		desc := parsed.SpecialistHint
		if desc == "" {
			desc = text
		}
		return reasonerDecision(desc), nil
	case Direct:
		desc := parsed.SpecialistHint
		if desc == "" {
			desc = text
		}
		return directDecision(desc), nil
	default:
		return Decision{}, fmt.Errorf("routing: tier B returned unknown route %q", parsed.Route)
	}
}

// extractJSONObject finds the first '{' and the last '}' in s and returns
// the substring between them, inclusive.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
