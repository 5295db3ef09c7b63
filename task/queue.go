package task

// Queue is an in-memory FIFO of Tasks. Not goroutine-safe: exactly one
// caller (the runner or the orchestrator) mutates a given Queue at a time.
type Queue struct {
	tasks []*Task
}

// NewQueue builds an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends t to the queue.
func (q *Queue) Push(t *Task) {
	q.tasks = append(q.tasks, t)
}

// All returns every task currently in the queue, in FIFO order.
func (q *Queue) All() []*Task {
	return q.tasks
}

// Get finds a task by ID, returning (nil, false) if absent.
func (q *Queue) Get(id string) (*Task, bool) {
	for _, t := range q.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Len reports how many tasks the queue holds.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// ByAgent returns the subset of tasks assigned to any of the given agents,
// preserving queue order.
func (q *Queue) ByAgent(agents ...Agent) []*Task {
	want := make(map[Agent]bool, len(agents))
	for _, a := range agents {
		want[a] = true
	}
	var out []*Task
	for _, t := range q.tasks {
		if want[t.Agent] {
			out = append(out, t)
		}
	}
	return out
}

// DependenciesSatisfied reports whether every dependency of t has reached
// COMPLETED.
func (q *Queue) DependenciesSatisfied(t *Task) bool {
	for depID := range t.Dependencies {
		dep, ok := q.Get(depID)
		if !ok || dep.Status != Completed {
			return false
		}
	}
	return true
}
