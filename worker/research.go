package worker

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Retriever is the external retrieval-augmented document store contract:
// the core never inspects the store's internal representation, only its
// ingest/query operations.
type Retriever interface {
	Ingest(ctx context.Context, path string) (string, error)
	Query(ctx context.Context, text string) (string, error)
}

var fileReferencePattern = regexp.MustCompile(`@\[([^\]]+)\]`)

// ExtractFileReferences returns every @[path] token's path, in order of
// appearance, and the input text with all such tokens stripped.
func ExtractFileReferences(text string) (paths []string, stripped string) {
	matches := fileReferencePattern.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		paths = append(paths, m[1])
	}
	stripped = strings.TrimSpace(fileReferencePattern.ReplaceAllString(text, ""))
	return paths, stripped
}

// ResearchWorker ingests @[filename] references into the retrieval layer
// and queries it with the cleaned text, returning the retrieved context
// block.
type ResearchWorker struct {
	retriever Retriever
}

// NewResearchWorker builds a ResearchWorker over retriever.
func NewResearchWorker(retriever Retriever) *ResearchWorker {
	return &ResearchWorker{retriever: retriever}
}

func (w *ResearchWorker) Execute(ctx context.Context, description string) (string, error) {
	paths, cleaned := ExtractFileReferences(description)

	for _, path := range paths {
		if _, err := w.retriever.Ingest(ctx, path); err != nil {
			// Ingest failures are not logged or returned; the token is
			// dropped and the call continues without it.
			continue
		}
	}

	queryText := cleaned
	if queryText == "" {
		queryText = description
	}

	contextBlock, err := w.retriever.Query(ctx, queryText)
	if err != nil {
		return "", fmt.Errorf("research: query failed: %w", err)
	}
	return contextBlock, nil
}
