package worker

import (
	"context"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
)

const reasonerSystemPrompt = "You are a precise reasoning engine for code and mathematics. Think step by step, then give a final answer. Be terse."

// ReasonerWorker calls a specialized code/math model with a terse system
// prompt and returns the raw completion.
type ReasonerWorker struct {
	gateway aiclient.Gateway
	model   string
}

// NewReasonerWorker builds a ReasonerWorker. model may be empty to use the
// gateway's default.
func NewReasonerWorker(gateway aiclient.Gateway, model string) *ReasonerWorker {
	return &ReasonerWorker{gateway: gateway, model: model}
}

func (w *ReasonerWorker) Execute(ctx context.Context, description string) (string, error) {
	resp, err := w.gateway.Complete(ctx, description, aiclient.Options{
		Model:        w.model,
		Temperature:  0.1,
		SystemPrompt: reasonerSystemPrompt,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
