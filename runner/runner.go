// Package runner implements a bounded worker pool that executes independent
// tasks concurrently, each under its own per-task timeout, collecting a
// success/failure record per task without ever aborting siblings. Pool
// width is enforced with golang.org/x/sync/semaphore.Weighted rather than
// a raw channel semaphore.
package runner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/gyunggyung/Tiny-MoA/logger"
	"github.com/gyunggyung/Tiny-MoA/task"
)

// DefaultConcurrency is the default bounded pool width.
const DefaultConcurrency = 4

// DefaultTaskTimeout is the per-task soft timeout.
const DefaultTaskTimeout = 60 * time.Second

// Execute runs fn(task) for every task in tasks, bounded to at most
// concurrency simultaneous executions, each under its own
// context.WithTimeout(ctx, timeout). A timed-out or errored task is
// recorded as FAILED and never aborts its siblings. Results are returned
// as a map id -> record after every submission completes; sibling
// completion order is unspecified.
func Execute(
	ctx context.Context,
	tasks []*task.Task,
	concurrency int,
	timeout time.Duration,
	log logger.Logger,
	fn func(ctx context.Context, t *task.Task) (string, error),
) map[string]Record {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	if log == nil {
		log = logger.NoOp{}
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	results := make(map[string]Record, len(tasks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, t := range tasks {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				results[t.ID] = Record{Success: false, Error: err.Error()}
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			rec := runOne(ctx, t, timeout, log, fn)
			mu.Lock()
			results[t.ID] = rec
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

// Record is one task's terminal outcome.
type Record struct {
	Success bool
	Result  string
	Error   string
}

func runOne(
	parent context.Context,
	t *task.Task,
	timeout time.Duration,
	log logger.Logger,
	fn func(ctx context.Context, t *task.Task) (string, error),
) Record {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	if err := t.Start(); err != nil {
		return Record{Success: false, Error: err.Error()}
	}

	result, err := fn(ctx, t)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr == context.DeadlineExceeded {
			log.Warn("task timed out", map[string]interface{}{"task_id": t.ID, "timeout": timeout.String()})
			_ = t.Fail("timeout: task exceeded " + timeout.String())
			return Record{Success: false, Error: "timeout: task exceeded " + timeout.String()}
		}
		log.Warn("task failed", map[string]interface{}{"task_id": t.ID, "error": err.Error()})
		_ = t.Fail(err.Error())
		return Record{Success: false, Error: err.Error()}
	}

	_ = t.Complete(result)
	return Record{Success: true, Result: result}
}
