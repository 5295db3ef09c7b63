// Package aiclient defines the opaque text-completion provider contract the
// orchestration engine calls into. Concrete backends (local model servers,
// hosted APIs) are external collaborators; this package only fixes the
// shape of the call and the reset contract every backend must honor.
package aiclient

import "context"

// Options configures a single completion call.
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// Response is a completed text generation.
type Response struct {
	Content      string
	FinishReason string
}

// Client is the contract every LLM backend implements. Reset must be called
// before every Complete call — small-model backends carry an internal
// KV-cache that must be cleared between unrelated calls or decoding fails.
type Client interface {
	// Reset clears any backend-internal conversation/session state.
	Reset(ctx context.Context) error
	// Complete runs one text completion.
	Complete(ctx context.Context, prompt string, opts Options) (*Response, error)
}

// WithReset wraps a Complete call with a mandatory Reset, so callers cannot
// accidentally skip the hygiene step.
func WithReset(ctx context.Context, c Client, prompt string, opts Options) (*Response, error) {
	if err := c.Reset(ctx); err != nil {
		return nil, err
	}
	return c.Complete(ctx, prompt, opts)
}
