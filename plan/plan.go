// Package plan implements the Planner: for open-ended goals that
// router/pipeline alone can't handle (multi-agent, file-writing, office
// documents), it prompts the model for a typed task list and post-validates
// the result against a closed set of tool/office description prefixes.
package plan

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/gyunggyung/Tiny-MoA/errs"
	"github.com/gyunggyung/Tiny-MoA/task"
)

// rawTask is the JSON shape one planned task takes in the LLM's response.
type rawTask struct {
	Description  string   `json:"description"`
	Agent        string   `json:"agent"`
	Dependencies []string `json:"dependencies"`
}

const plannerSystemPrompt = `You are a planner for a local multi-agent orchestrator. Given a goal, decompose it into a short ordered list of tasks.
Each task is assigned to exactly one agent from this closed set: "tool", "research", "direct", "writer", "office".
Respond with ONLY a single JSON array, no commentary, no markdown fences, shaped like:
[{"description": "...", "agent": "tool", "dependencies": []}, ...]

Examples of plan shapes:
- single-writer: one "writer" task that drafts the final document from the goal directly.
- single-office: one "office" task that produces a slide deck/spreadsheet/document.
- research-then-writer: a "research" task followed by a "writer" task depending on it.
- tool-then-office: one or more "tool" tasks followed by an "office" task depending on all of them.`

// toolPrefixes and officePrefixes force a task's agent regardless of what
// the model claimed.
var toolPrefixes = []string{"execute_command:", "search_web:", "search_news:", "get_weather:"}
var officePrefixes = []string{"create_ppt:", "create_word:", "create_excel:"}

// Build prompts gateway for a typed plan over goal and returns the
// resulting task queue. On any parse failure it falls back to a singleton
// {description: goal, agent: direct} plan, never erroring to the caller.
func Build(ctx context.Context, gateway aiclient.Gateway, goal string) *task.Queue {
	q := task.NewQueue()

	resp, err := gateway.Complete(ctx, goal, aiclient.Options{
		Temperature:  0.2,
		SystemPrompt: plannerSystemPrompt,
	})
	if err != nil {
		return fallbackPlan(q, goal)
	}

	raw, ok := extractJSONArray(resp.Content)
	if !ok {
		return fallbackPlan(q, goal)
	}

	var rawTasks []rawTask
	if err := json.Unmarshal([]byte(raw), &rawTasks); err != nil || len(rawTasks) == 0 {
		return fallbackPlan(q, goal)
	}

	// First pass: create tasks and remember the raw->ID mapping keyed by
	// description, since the model's dependency references are by description, not ID.
	idByDescription := make(map[string]string, len(rawTasks))
	tasks := make([]*task.Task, 0, len(rawTasks))
	for _, rt := range rawTasks {
		agent := postValidate(rt.Description, task.Agent(strings.ToLower(rt.Agent)))
		t := task.NewTask(rt.Description, agent)
		tasks = append(tasks, t)
		idByDescription[rt.Description] = t.ID
	}

	for i, rt := range rawTasks {
		for _, depDesc := range rt.Dependencies {
			if depID, ok := idByDescription[depDesc]; ok && depID != tasks[i].ID {
				tasks[i].Dependencies[depID] = true
			}
		}
		q.Push(tasks[i])
	}

	return q
}

// postValidate forces agent to "tool" or "office" when description begins
// with a known tool/office prefix, overriding whatever the model claimed.
func postValidate(description string, agent task.Agent) task.Agent {
	for _, prefix := range toolPrefixes {
		if strings.HasPrefix(description, prefix) {
			return task.AgentTool
		}
	}
	for _, prefix := range officePrefixes {
		if strings.HasPrefix(description, prefix) {
			return task.AgentOffice
		}
	}
	switch agent {
	case task.AgentDirect, task.AgentTool, task.AgentReasoner, task.AgentResearch, task.AgentWriter, task.AgentOffice:
		return agent
	default:
		return task.AgentDirect
	}
}

func fallbackPlan(q *task.Queue, goal string) *task.Queue {
	q.Push(task.NewTask(goal, task.AgentDirect))
	return q
}

func extractJSONArray(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// Stage is one execution group of a Plan: either the bounded-parallel
// tool/research group or the sequential direct/writer/office group.
type Stage struct {
	Tasks    []*task.Task
	Parallel bool
}

// Stages returns q's two execution stages in run order. Normally the
// parallel tool/research stage runs first; when ragFirst is true (the
// hybrid RAG+tool case) the sequential stage runs first so its
// summarization can inform the tool stage that follows. Each stage keeps
// its own concurrency regardless of order.
func Stages(q *task.Queue, ragFirst bool) []Stage {
	parallel := Stage{Tasks: q.ByAgent(task.AgentTool, task.AgentResearch), Parallel: true}
	sequential := Stage{Tasks: q.ByAgent(task.AgentDirect, task.AgentReasoner, task.AgentWriter, task.AgentOffice), Parallel: false}
	if ragFirst {
		return []Stage{sequential, parallel}
	}
	return []Stage{parallel, sequential}
}

// RequireNonEmpty returns errs.ErrEmptyPlan if q holds no tasks. Build
// itself never produces an empty queue; this guards callers that accept a
// queue built elsewhere (e.g. a future CLI/replay path).
func RequireNonEmpty(q *task.Queue) error {
	if q.Len() == 0 {
		return errs.ErrEmptyPlan
	}
	return nil
}
