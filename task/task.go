// Package task defines typed task records with a monotonic status
// lifecycle, held in a plain in-memory slice. Deliberately not
// goroutine-safe: only the runner or the orchestrator mutates the shared
// queue, one phase at a time.
package task

import (
	"fmt"

	"github.com/google/uuid"
)

// Agent is the executor type a Task is assigned to.
type Agent string

const (
	AgentDirect   Agent = "direct"
	AgentTool     Agent = "tool"
	AgentReasoner Agent = "reasoner"
	AgentResearch Agent = "research"
	AgentWriter   Agent = "writer"
	AgentOffice   Agent = "office"
)

// Status is a Task's lifecycle state. Transitions are monotonic:
// PENDING -> RUNNING -> {COMPLETED, FAILED}.
type Status string

const (
	Pending   Status = "PENDING"
	Running   Status = "RUNNING"
	Completed Status = "COMPLETED"
	Failed    Status = "FAILED"
)

// Task is one unit of work in a Plan.
type Task struct {
	ID           string
	Description  string
	Agent        Agent
	Status       Status
	Result       string
	Dependencies map[string]bool
}

// NewID returns a fresh globally-unique task identifier.
func NewID() string {
	return uuid.New().String()
}

// NewTask builds a PENDING task with a fresh ID and no dependencies.
func NewTask(description string, agent Agent) *Task {
	return &Task{
		ID:           NewID(),
		Description:  description,
		Agent:        agent,
		Status:       Pending,
		Dependencies: make(map[string]bool),
	}
}

// Start transitions a PENDING task to RUNNING. It is a no-op error to call
// this on a task not in PENDING.
func (t *Task) Start() error {
	if t.Status != Pending {
		return fmt.Errorf("task: cannot start task %s from status %s", t.ID, t.Status)
	}
	t.Status = Running
	return nil
}

// Complete transitions a RUNNING task to COMPLETED, setting its result.
// Result is set iff status is terminal.
func (t *Task) Complete(result string) error {
	if t.Status != Running {
		return fmt.Errorf("task: cannot complete task %s from status %s", t.ID, t.Status)
	}
	t.Status = Completed
	t.Result = result
	return nil
}

// Fail transitions a RUNNING task to FAILED, recording errMsg as its result.
func (t *Task) Fail(errMsg string) error {
	if t.Status != Running {
		return fmt.Errorf("task: cannot fail task %s from status %s", t.ID, t.Status)
	}
	t.Status = Failed
	t.Result = errMsg
	return nil
}

// Terminal reports whether the task has reached COMPLETED or FAILED.
func (t *Task) Terminal() bool {
	return t.Status == Completed || t.Status == Failed
}

// Parallelizable reports whether agent belongs to the independent-tasks
// phase: tool/research run in parallel first; direct/writer/office run
// sequentially after.
func Parallelizable(a Agent) bool {
	return a == AgentTool || a == AgentResearch
}
