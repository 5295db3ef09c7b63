package aiclient

import (
	"context"
	"sync"
)

// Gateway is the narrow interface workers depend on instead of the
// orchestrator itself, breaking the cyclic "workers need the orchestrator
// for model calls" dependency. It wraps a Client with the process-wide
// model lock: LLM handles are not concurrency-safe (they carry internal
// KV-cache state), so the lock must be held for exactly one completion
// call, spanning the mandatory Reset.
type Gateway interface {
	Complete(ctx context.Context, prompt string, opts Options) (*Response, error)
}

// LockedGateway serializes every completion behind a single mutex shared by
// all callers, guaranteeing no two model completions ever execute
// concurrently regardless of how many workers are in flight.
type LockedGateway struct {
	client Client
	mu     sync.Mutex
}

// NewLockedGateway wraps client with the shared model lock.
func NewLockedGateway(client Client) *LockedGateway {
	return &LockedGateway{client: client}
}

// Complete acquires the lock, resets the backend, runs the completion, and
// releases the lock. Lock hold time spans exactly one completion call.
func (g *LockedGateway) Complete(ctx context.Context, prompt string, opts Options) (*Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.client.Reset(ctx); err != nil {
		return nil, err
	}
	return g.client.Complete(ctx, prompt, opts)
}
