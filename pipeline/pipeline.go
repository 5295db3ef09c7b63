// Package pipeline scans English input against a pattern table of
// compound-request shapes ("search web then summarize") and emits a 2-step
// pipeline, or falls back to a singleton pipeline wrapping the Router's own
// decision.
package pipeline

import (
	"regexp"

	"github.com/gyunggyung/Tiny-MoA/routing"
)

// Step is one stage of a Pipeline. Invariant: ContextFromStep, if set
// (>0), must be < Index; cycles are forbidden.
type Step struct {
	Index           int
	Route           routing.Kind
	ToolHint        string
	ArgHint         string
	ContextFromStep int // 0 means "no back-reference"
}

// Pipeline is an ordered, acyclic list of Steps — the canonical input to
// the Orchestrator.
type Pipeline []Step

// patternRule is one entry of the compound-request pattern table: a regex
// over the English input plus the two-step shape to emit when it matches.
type patternRule struct {
	name  string
	match *regexp.Regexp
	build func(m []string) Pipeline
}

var patternTable = []patternRule{
	{
		name:  "search_then_summarize",
		match: regexp.MustCompile(`(?i)search (?:for |the web for )?(.+?) (?:then|and then) summarize`),
		build: func(m []string) Pipeline {
			return Pipeline{
				{Index: 1, Route: routing.Tool, ToolHint: "search_web", ArgHint: m[1]},
				{Index: 2, Route: routing.Direct, ArgHint: "summarize", ContextFromStep: 1},
			}
		},
	},
	{
		name:  "summarize_and_weather",
		match: regexp.MustCompile(`(?i)summarize (.+?) and (?:get |check )?(?:the )?weather(?: in (.+))?`),
		build: func(m []string) Pipeline {
			return Pipeline{
				{Index: 1, Route: routing.Direct, ArgHint: "summarize " + m[1]},
				{Index: 2, Route: routing.Tool, ToolHint: "get_weather", ArgHint: weatherArg(m)},
			}
		},
	},
	{
		name:  "read_url_then_summarize",
		match: regexp.MustCompile(`(?i)read (https?://\S+) (?:then|and) summarize`),
		build: func(m []string) Pipeline {
			return Pipeline{
				{Index: 1, Route: routing.Tool, ToolHint: "read_url", ArgHint: m[1]},
				{Index: 2, Route: routing.Direct, ArgHint: "summarize", ContextFromStep: 1},
			}
		},
	},
}

func weatherArg(m []string) string {
	if len(m) > 2 && m[2] != "" {
		return m[2]
	}
	return ""
}

// Build scans englishText against the pattern table in order. The first
// match emits its 2-step pipeline, provided it passes the Acyclic guard
// (a rule whose steps reference a later step is skipped rather than
// executed); if nothing matches, it falls back to a singleton pipeline
// wrapping decision (the Router's own classification of the same text).
func Build(englishText string, decision routing.Decision) Pipeline {
	for _, rule := range patternTable {
		if m := rule.match.FindStringSubmatch(englishText); m != nil {
			if p := rule.build(m); Acyclic(p) {
				return p
			}
		}
	}
	return Pipeline{{
		Index:    1,
		Route:    decision.Kind,
		ToolHint: decision.ToolHint,
		ArgHint:  decision.ArgHint,
	}}
}

// Acyclic checks that every step's ContextFromStep, if set, references a
// strictly earlier step index.
func Acyclic(p Pipeline) bool {
	for _, s := range p {
		if s.ContextFromStep != 0 && s.ContextFromStep >= s.Index {
			return false
		}
	}
	return true
}
