package worker

import (
	"context"
	"strings"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
)

// DirectWorker calls the language model with the description, optionally
// prefixed by prior conversation history, and returns its text.
type DirectWorker struct {
	gateway aiclient.Gateway
	history string
}

// NewDirectWorker builds a DirectWorker. history, if non-empty, is
// prepended to every prompt as prior context.
func NewDirectWorker(gateway aiclient.Gateway, history string) *DirectWorker {
	return &DirectWorker{gateway: gateway, history: history}
}

func (w *DirectWorker) Execute(ctx context.Context, description string) (string, error) {
	prompt := description
	if w.history != "" {
		var b strings.Builder
		b.WriteString(w.history)
		b.WriteString("\n\n")
		b.WriteString(description)
		prompt = b.String()
	}

	resp, err := w.gateway.Complete(ctx, prompt, aiclient.Options{Temperature: 0.7})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
