// Package worker implements the typed task executors. Every worker shares
// the Worker interface's uniform execute(description) contract.
package worker

import "context"

// Worker is the contract every typed executor satisfies.
type Worker interface {
	Execute(ctx context.Context, description string) (string, error)
}

// Func adapts a plain function to the Worker interface.
type Func func(ctx context.Context, description string) (string, error)

func (f Func) Execute(ctx context.Context, description string) (string, error) {
	return f(ctx, description)
}
