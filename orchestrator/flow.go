package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gyunggyung/Tiny-MoA/pipeline"
	"github.com/gyunggyung/Tiny-MoA/plan"
	"github.com/gyunggyung/Tiny-MoA/routing"
	"github.com/gyunggyung/Tiny-MoA/runner"
	"github.com/gyunggyung/Tiny-MoA/task"
	"github.com/gyunggyung/Tiny-MoA/tools"
	"github.com/gyunggyung/Tiny-MoA/worker"
)

// executeDecision runs a single RouteDecision against the appropriate
// worker/dispatcher and returns a (label, raw payload) pair, suitable for
// framing into a `[TASK: label] DATA: payload` block for the Formatter.
// Tool payloads are passed through as their raw JSON so the Formatter's
// typed renderers (weather cards, search lists) can still apply.
// fallbackText is the full original request this decision was derived
// from (not just the Router's, possibly-trimmed, ArgHint) — the Tool
// Dispatcher's keyword-inference fallback needs the whole request, e.g. so
// "Check if uv is installed and python version" still carries "python
// version" even when the Router's specialist hint dropped it.
func (o *Orchestrator) executeDecision(ctx context.Context, decision routing.Decision, history, fallbackText string) (label, payload string) {
	switch decision.Kind {
	case routing.Tool:
		result := o.dispatcher.Dispatch(ctx, tools.Call{
			Name:    decision.ToolHint,
			ArgHint: decision.ArgHint,
			Text:    fallbackText,
		})
		if !result.Success {
			return decision.ToolHint, result.Error
		}
		raw, err := json.Marshal(result.Payload)
		if err != nil {
			return decision.ToolHint, result.Error
		}
		return decision.ToolHint, string(raw)

	case routing.Reasoner:
		rw := worker.NewReasonerWorker(o.gateway, "")
		out, err := rw.Execute(ctx, decision.Description)
		if err != nil {
			return "reasoner", err.Error()
		}
		return "reasoner", out

	default:
		dw := worker.NewDirectWorker(o.gateway, history)
		out, err := dw.Execute(ctx, decision.Description)
		if err != nil {
			return "direct", err.Error()
		}
		return "direct", out
	}
}

func frame(label, payload string) string {
	return fmt.Sprintf("[TASK: %s] DATA: %s", label, payload)
}

// runSingleRoute executes one Router decision end to end and renders it:
// the plain single-request path. englishGoal is threaded through as the
// fallback text so the Dispatcher's keyword inference sees the whole
// request, not just the Router's (possibly trimmed) ArgHint.
func (o *Orchestrator) runSingleRoute(ctx context.Context, decision routing.Decision, history, englishGoal string) string {
	label, payload := o.executeDecision(ctx, decision, history, englishGoal)
	return o.formatter.Render(ctx, frame(label, payload))
}

// runPipeline executes a multi-step Pipeline sequentially, threading each
// step's raw output into any later step that declares ContextFromStep.
// Only the final step's output is rendered — earlier steps exist purely to
// gather context for it.
func (o *Orchestrator) runPipeline(ctx context.Context, pl pipeline.Pipeline, history string) string {
	results := make(map[int]string, len(pl))
	var lastLabel, lastPayload string

	for _, step := range pl {
		desc := step.ArgHint
		if step.ContextFromStep != 0 {
			if prev, ok := results[step.ContextFromStep]; ok {
				desc = desc + "\n\nContext:\n" + prev
			}
		}

		decision := routing.Decision{
			Kind:        step.Route,
			ToolHint:    step.ToolHint,
			ArgHint:     desc,
			Description: desc,
		}
		label, payload := o.executeDecision(ctx, decision, history, desc)
		results[step.Index] = payload
		lastLabel, lastPayload = label, payload
	}

	return o.formatter.Render(ctx, frame(lastLabel, lastPayload))
}

// runDecomposition handles a compound or comparison request: each
// independent sub-query is routed up front, then all sub-queries execute
// under the bounded parallel Runner (the model lock serializes any LLM
// calls among them). Aggregate order follows decomposition order, never
// completion order. The literal "compare" marker Decompose appends is a
// signal to run the Integration LLM over the aggregate, not a sub-query
// to execute.
func (o *Orchestrator) runDecomposition(ctx context.Context, subqueries []string, history string) string {
	hasCompare := false
	var queries []string
	for _, q := range subqueries {
		if q == "compare" {
			hasCompare = true
			continue
		}
		queries = append(queries, q)
	}

	type subResult struct {
		label   string
		payload string
	}
	results := make([]subResult, len(queries))
	tasks := make([]*task.Task, len(queries))
	indexByID := make(map[string]int, len(queries))
	decisions := make(map[string]routing.Decision, len(queries))
	for i, q := range queries {
		d := o.router.Route(ctx, q)
		t := task.NewTask(q, agentForDecision(d))
		tasks[i] = t
		indexByID[t.ID] = i
		decisions[t.ID] = d
	}

	records := runner.Execute(ctx, tasks, runner.DefaultConcurrency, runner.DefaultTaskTimeout, o.log,
		func(ctx context.Context, t *task.Task) (string, error) {
			i := indexByID[t.ID]
			label, payload := o.executeDecision(ctx, decisions[t.ID], history, t.Description)
			results[i] = subResult{label: label, payload: payload}
			return payload, nil
		})

	blocks := make([]string, 0, len(queries))
	for i, q := range queries {
		r := results[i]
		if r.payload == "" {
			if rec, ok := records[tasks[i].ID]; ok && !rec.Success {
				r.label, r.payload = "error", rec.Error
			}
		}
		blocks = append(blocks, frame(q+" ("+r.label+")", r.payload))
	}

	aggregate := strings.Join(blocks, "\n")
	if hasCompare {
		return o.formatter.Integrate(ctx, aggregate)
	}
	return o.formatter.Render(ctx, aggregate)
}

// agentForDecision maps a RouteDecision onto the task agent that executes
// it, for lifecycle bookkeeping under the Runner.
func agentForDecision(d routing.Decision) task.Agent {
	switch d.Kind {
	case routing.Tool:
		return task.AgentTool
	case routing.Reasoner:
		return task.AgentReasoner
	default:
		return task.AgentDirect
	}
}

// runCowork builds a full Plan and executes it in two stages: the
// tool/research tasks run in parallel under the bounded Runner and the
// direct/writer/office tasks run sequentially so each can see its
// dependencies' completed results. ragFirst swaps which stage runs first;
// each stage keeps its own concurrency (the tool/research group is always
// dispatched to the Runner, the direct/writer/office group is always run
// one at a time) regardless of order, matching the hybrid RAG+tool
// reordering without ever running a sequential-only task through the
// parallel pool or vice versa. Completed stage output is threaded into
// the next stage as shared history, so a writer task can draw on the tool
// results that preceded it.
func (o *Orchestrator) runCowork(ctx context.Context, englishGoal, contextBlock, history string, ragFirst bool) string {
	var queue *task.Queue
	if ragFirst {
		queue = hybridPlan(englishGoal)
	} else {
		queue = plan.Build(ctx, o.gateway, englishGoal)
	}
	if err := plan.RequireNonEmpty(queue); err != nil {
		return "I couldn't build a plan for that request."
	}

	if contextBlock != "" {
		history = strings.TrimSpace(history + "\n\n[CONTEXT FROM UPLOADED FILES]\n" + contextBlock + "\n[END OF CONTEXT]")
	}

	var blocks []string
	for _, stage := range plan.Stages(queue, ragFirst) {
		var stageBlocks []string
		if stage.Parallel {
			stageBlocks = o.runParallelStage(ctx, stage.Tasks, history)
		} else {
			stageBlocks = o.runSequentialStage(ctx, queue, stage.Tasks, history)
		}
		blocks = append(blocks, stageBlocks...)
		if len(stageBlocks) > 0 {
			history = strings.TrimSpace(history + "\n\n" + strings.Join(stageBlocks, "\n"))
		}
	}

	return o.formatter.Render(ctx, strings.Join(blocks, "\n"))
}

// hybridPlan is the fixed plan for a hybrid RAG+tool request: one direct
// task that analyzes the attached file context, plus one tool task per
// tool keyword the goal names. The model planner is bypassed here because
// the request's shape is already fully determined by its keywords, and a
// model-generated plan could drop either half of the hybrid.
func hybridPlan(englishGoal string) *task.Queue {
	q := task.NewQueue()
	q.Push(task.NewTask("Analyze the provided file context and summarize: "+englishGoal, task.AgentDirect))

	lower := strings.ToLower(englishGoal)
	if strings.Contains(lower, "weather") {
		location := "Seoul"
		for _, city := range []string{"seoul", "tokyo", "busan", "incheon", "daegu", "new york", "london", "paris"} {
			if strings.Contains(lower, city) {
				location = titleCase(city)
				break
			}
		}
		q.Push(task.NewTask(location+" weather", task.AgentTool))
	}
	if strings.Contains(lower, "news") || strings.Contains(lower, "search") {
		q.Push(task.NewTask(englishGoal, task.AgentTool))
	}
	if strings.Contains(lower, "time") {
		q.Push(task.NewTask("get_current_time: UTC", task.AgentTool))
	}
	return q
}

func titleCase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}

func (o *Orchestrator) runParallelStage(ctx context.Context, tasks []*task.Task, history string) []string {
	if len(tasks) == 0 {
		return nil
	}
	var out []string
	records := runner.Execute(ctx, tasks, runner.DefaultConcurrency, runner.DefaultTaskTimeout, o.log,
		func(ctx context.Context, t *task.Task) (string, error) {
			return o.executeTask(ctx, t, history)
		})
	for _, t := range tasks {
		rec := records[t.ID]
		text := rec.Result
		if !rec.Success {
			text = rec.Error
		}
		out = append(out, frame(t.Description, text))
	}
	return out
}

// runSequentialStage runs tasks one at a time, in plan order, so a task
// whose dependency is an earlier sequential task (not just a parallel one)
// sees a COMPLETED dependency before it starts. Each completed result is
// appended to the shared history the remaining tasks in the stage see.
func (o *Orchestrator) runSequentialStage(ctx context.Context, queue *task.Queue, tasks []*task.Task, history string) []string {
	var out []string
	for _, t := range tasks {
		if !queue.DependenciesSatisfied(t) {
			out = append(out, frame(t.Description, "skipped: unmet dependency"))
			continue
		}
		if err := t.Start(); err != nil {
			continue
		}
		result, err := o.executeTask(ctx, t, history)
		if err != nil {
			_ = t.Fail(err.Error())
			out = append(out, frame(t.Description, err.Error()))
			continue
		}
		_ = t.Complete(result)
		out = append(out, frame(t.Description, result))
		history = strings.TrimSpace(history + "\n\n" + frame(t.Description, result))
	}
	return out
}

// executeTask dispatches a Plan task to the worker matching its assigned
// agent.
func (o *Orchestrator) executeTask(ctx context.Context, t *task.Task, history string) (string, error) {
	switch t.Agent {
	case task.AgentDirect:
		return worker.NewDirectWorker(o.gateway, history).Execute(ctx, t.Description)
	case task.AgentReasoner:
		return worker.NewReasonerWorker(o.gateway, "").Execute(ctx, t.Description)
	case task.AgentTool:
		return worker.NewToolWorker(o.dispatcher).Execute(ctx, t.Description)
	case task.AgentResearch:
		if o.retriever == nil {
			return "", fmt.Errorf("orchestrator: no retrieval backend configured for a research task")
		}
		return worker.NewResearchWorker(o.retriever).Execute(ctx, t.Description)
	case task.AgentWriter:
		return worker.NewWriterWorker(o.gateway, history, o.reportPath).Execute(ctx, t.Description)
	case task.AgentOffice:
		if o.officeGen == nil {
			return "", fmt.Errorf("orchestrator: no office generator configured for an office task")
		}
		return worker.NewOfficeWorker(o.gateway, o.officeGen).Execute(ctx, t.Description)
	default:
		return "", fmt.Errorf("orchestrator: unknown agent %q", t.Agent)
	}
}
