package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
)

const writerSystemPrompt = "You are drafting a final, polished document from the conversation history and the user's goal. Write complete prose, not a summary of a summary."

// DefaultReportPath is where WriterWorker saves its output absent an
// override.
const DefaultReportPath = "docs/cowork_result.md"

// WriterWorker receives history plus the user's goal, prompts the model
// for a final polished document, and writes it to a workspace-relative
// path.
type WriterWorker struct {
	gateway  aiclient.Gateway
	history  string
	destPath string
}

// NewWriterWorker builds a WriterWorker. destPath defaults to
// DefaultReportPath if empty.
func NewWriterWorker(gateway aiclient.Gateway, history, destPath string) *WriterWorker {
	if destPath == "" {
		destPath = DefaultReportPath
	}
	return &WriterWorker{gateway: gateway, history: history, destPath: destPath}
}

func (w *WriterWorker) Execute(ctx context.Context, description string) (string, error) {
	prompt := description
	if w.history != "" {
		prompt = w.history + "\n\n" + description
	}

	resp, err := w.gateway.Complete(ctx, prompt, aiclient.Options{
		Temperature:  0.5,
		SystemPrompt: writerSystemPrompt,
	})
	if err != nil {
		return "", err
	}

	if err := WriteReport(w.destPath, resp.Content); err != nil {
		return "", fmt.Errorf("writer: saving report: %w", err)
	}
	return resp.Content, nil
}

// WriteReport writes content to path, creating any parent directory as
// needed. Used both by WriterWorker for its own draft and by the
// Orchestrator for the final, post-integration report, overwriting any
// prior file.
func WriteReport(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
