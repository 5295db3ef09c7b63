package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/gyunggyung/Tiny-MoA/errs"
)

// Result is the Tool Dispatcher's terminal outcome for one call.
type Result struct {
	Success bool
	Payload map[string]interface{}
	Error   string
}

// Call is one tool invocation request.
type Call struct {
	Name    string
	ArgHint string
	Text    string // the original user text, used for keyword-inference fallback
}

// semanticErrorMarkers are scanned for in a "successful" tool payload —
// a hit reclassifies the result as a failure.
var semanticErrorMarkers = []string{
	"timeout", "rate limit", "api error", "access denied", "404", "500", "traceback",
}

// Dispatcher validates, invokes, and repairs tool calls.
type Dispatcher struct {
	registry *Registry
	gateway  aiclient.Gateway // used only for the repair retry; may be nil
}

// NewDispatcher builds a Dispatcher over registry. gateway may be nil, in
// which case the repair retry step is skipped and failures surface
// immediately.
func NewDispatcher(registry *Registry, gateway aiclient.Gateway) *Dispatcher {
	return &Dispatcher{registry: registry, gateway: gateway}
}

// Dispatch runs the full pipeline: argument acquisition, schema repair,
// invocation, semantic-error detection, and (on failure) one LLM repair
// retry.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call) Result {
	def, ok := d.registry.Get(call.Name)
	if !ok {
		return Result{Success: false, Error: errs.ErrToolNotFound.Error()}
	}

	args := d.acquireArgs(def.Schema, call)
	args = repairSchema(def.Schema, args)

	payload, err := def.Handler(ctx, args)
	if err == nil && !hasSemanticError(payload) {
		return Result{Success: true, Payload: payload}
	}

	failure := ""
	if err != nil {
		failure = err.Error()
	} else {
		failure = "tool reported success but payload contains an error marker"
	}

	if d.gateway == nil {
		return Result{Success: false, Error: boundedErrorMessage(call.Name, failure)}
	}

	repairedArgs, repairErr := d.repair(ctx, def.Schema, call, args, failure)
	if repairErr != nil {
		return Result{Success: false, Error: boundedErrorMessage(call.Name, failure)}
	}

	payload, err = def.Handler(ctx, repairedArgs)
	if err != nil || hasSemanticError(payload) {
		finalErr := failure
		if err != nil {
			finalErr = err.Error()
		}
		return Result{Success: false, Error: boundedErrorMessage(call.Name, finalErr)}
	}

	return Result{Success: true, Payload: payload}
}

// acquireArgs prefers the Router's ArgHint, mapped into the tool's
// canonical parameter; falls back to a keyword-based inference over the
// original text when the hint is rejected. get_current_time is special:
// its only parameter is the optional timezone, and a Router hint there is
// usually the whole question ("what time is it?") rather than a timezone
// name — such a hint is dropped so the handler's UTC default applies.
func (d *Dispatcher) acquireArgs(schema Schema, call Call) map[string]interface{} {
	canonical := schema.CanonicalArgKey()
	hint := strings.TrimSpace(call.ArgHint)

	if schema.Name == "execute_command" {
		hint = resolveCommand(hint, call.Text)
	}
	if schema.Name == "get_current_time" {
		if isTimezoneArg(hint) {
			return map[string]interface{}{canonical: hint}
		}
		return map[string]interface{}{}
	}

	if hint != "" {
		return map[string]interface{}{canonical: hint}
	}
	return map[string]interface{}{canonical: inferArgFromText(schema.Name, call.Text)}
}

// isTimezoneArg reports whether hint looks like an IANA timezone name
// ("Asia/Seoul", "UTC") rather than natural language.
func isTimezoneArg(hint string) bool {
	if hint == "" || strings.ContainsAny(hint, " \t?") {
		return false
	}
	if strings.EqualFold(hint, "utc") || strings.EqualFold(hint, "gmt") || strings.EqualFold(hint, "local") {
		return true
	}
	return strings.Contains(hint, "/")
}

var instructionVerbPattern = regexp.MustCompile(`(?i)^(check|verify|confirm|validate|ensure|make sure)\b`)

// rejectAsCommand reports whether hint looks like a natural-language
// instruction rather than a literal shell command:
// either it opens with an instruction verb and has more than two words, or
// it contains CJK characters.
func rejectAsCommand(hint string) bool {
	if hint == "" {
		return true
	}
	if instructionVerbPattern.MatchString(hint) && len(strings.Fields(hint)) > 2 {
		return true
	}
	for _, r := range hint {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			return true
		}
	}
	return false
}

// resolveCommand turns a Router hint into a literal shell command for the
// execute_command tool. "X version"/"is X installed" phrasing naming a
// known CLI/runtime is translated directly off the full original text
// rather than the (possibly LLM-trimmed) hint, since a specialist hint
// like "Check if uv is installed" can drop a trailing clause ("and python
// version") that only the original request still carries; anything else
// that still looks like a natural-language instruction is rejected and
// re-inferred from the original text instead.
func resolveCommand(hint, text string) string {
	if cmd, ok := versionCheckCommand(text); ok {
		return cmd
	}
	if !rejectAsCommand(hint) {
		return hint
	}
	return inferCommand(text)
}

// knownVersionTools maps a recognized CLI/runtime name to the command that
// prints its version, checked in order so a longer name (e.g. "python3")
// is matched before the shorter name it contains ("python").
var knownVersionTools = []struct {
	name    string
	command string
}{
	{"python3", "python3 --version"},
	{"uv", "uv --version"},
	{"python", "python --version"},
	{"node", "node --version"},
	{"npm", "npm --version"},
	{"docker", "docker --version"},
	{"git", "git --version"},
	{"go", "go version"},
}

// versionCheckCommand recognizes "is X installed"/"X version" phrasing
// naming one or more known tools and joins their version-check commands
// with "&&", e.g. "Check if uv is installed and python version" becomes
// "uv --version && python --version". Reports ok=false when text names no
// known tool, so callers can fall back to the generic inference table.
func versionCheckCommand(text string) (string, bool) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "version") && !strings.Contains(lower, "installed") {
		return "", false
	}

	var commands []string
	seen := make(map[string]bool)
	for _, tool := range knownVersionTools {
		if seen[tool.name] || !containsWord(lower, tool.name) {
			continue
		}
		seen[tool.name] = true
		commands = append(commands, tool.command)
	}
	if len(commands) == 0 {
		return "", false
	}
	return strings.Join(commands, " && "), true
}

// containsWord reports whether word occurs in lower as a whole word rather
// than a raw substring, so e.g. "go" does not match inside "google".
func containsWord(lower, word string) bool {
	idx := strings.Index(lower, word)
	for idx >= 0 {
		before := idx == 0 || !isWordByte(lower[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx == len(lower) || !isWordByte(lower[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], word)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// inferCommand performs a tiny keyword-to-command inference over free
// text, used when the argHint is rejected as non-literal. This is
// necessarily a closed, conservative table: unknown intents fall back to
// a harmless introspection command rather than guessing at something
// destructive.
func inferCommand(text string) string {
	if cmd, ok := versionCheckCommand(text); ok {
		return cmd
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "version"):
		return "uname -a"
	case strings.Contains(lower, "disk") || strings.Contains(lower, "storage"):
		return "df -h"
	case strings.Contains(lower, "list files") || strings.Contains(lower, "directory"):
		return "ls -la"
	case strings.Contains(lower, "process"):
		return "ps aux"
	default:
		return "echo no command could be inferred"
	}
}

// inferArgFromText maps free text into a tool's primary argument using a
// small keyword table, used when the Router supplied no argHint at all.
func inferArgFromText(toolName, text string) string {
	switch toolName {
	case "execute_command":
		return inferCommand(text)
	default:
		return text
	}
}

// repairSchema renames argument keys foreign to the tool's schema to the
// canonical key, e.g. a stray "location" key passed
// to search_web becomes "query".
func repairSchema(schema Schema, args map[string]interface{}) map[string]interface{} {
	canonical := schema.CanonicalArgKey()
	repaired := make(map[string]interface{}, len(args))
	for k, v := range args {
		if schema.HasParam(k) {
			repaired[k] = v
			continue
		}
		repaired[canonical] = v
	}
	return repaired
}

func hasSemanticError(payload map[string]interface{}) bool {
	blob := strings.ToLower(flattenPayload(payload))
	for _, marker := range semanticErrorMarkers {
		if strings.Contains(blob, marker) {
			return true
		}
	}
	return false
}

func flattenPayload(payload map[string]interface{}) string {
	var b strings.Builder
	for _, v := range payload {
		switch val := v.(type) {
		case string:
			b.WriteString(val)
			b.WriteByte(' ')
		case []map[string]interface{}:
			for _, m := range val {
				b.WriteString(flattenPayload(m))
			}
		}
	}
	return b.String()
}

// repairArgs is the JSON shape the repair prompt demands.
type repairArgs map[string]interface{}

// repair issues the one allowed repair retry: it asks the model for
// corrected arguments given the tool
// name, failed arguments, error, and original text, and returns them for
// Dispatch to re-invoke the handler with once.
// A bare string response for execute_command is treated as {command: ...}
// rather than a parse failure.
func (d *Dispatcher) repair(ctx context.Context, schema Schema, call Call, failedArgs map[string]interface{}, failure string) (map[string]interface{}, error) {
	failedJSON, _ := json.Marshal(failedArgs)
	prompt := fmt.Sprintf(
		"Tool %q failed.\nFailed arguments: %s\nError: %s\nOriginal user text: %s\n\n"+
			"Respond with ONLY a corrected JSON object of arguments for this tool's schema, no commentary.",
		schema.Name, string(failedJSON), failure, call.Text,
	)

	resp, err := d.gateway.Complete(ctx, prompt, aiclient.Options{Temperature: 0})
	if err != nil {
		return nil, fmt.Errorf("tools: repair completion failed: %w", err)
	}

	raw := strings.TrimSpace(resp.Content)
	if schema.Name == "execute_command" && !strings.HasPrefix(raw, "{") {
		return map[string]interface{}{"command": raw}, nil
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end < start {
		return nil, fmt.Errorf("tools: repair response had no JSON object")
	}

	var repaired repairArgs
	if err := json.Unmarshal([]byte(raw[start:end+1]), &repaired); err != nil {
		return nil, fmt.Errorf("tools: repair JSON unmarshal failed: %w", err)
	}
	return repairSchema(schema, repaired), nil
}

// boundedErrorMessage produces a short, user-facing sentence rather than a
// raw internal error.
func boundedErrorMessage(toolName, detail string) string {
	const maxLen = 160
	if len(detail) > maxLen {
		detail = detail[:maxLen] + "..."
	}
	return fmt.Sprintf("the %s tool could not complete this request (%s)", toolName, detail)
}
