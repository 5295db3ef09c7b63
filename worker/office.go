package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
)

// OfficeGenerator models the external file-writing office generators:
// given a structured document shape, it produces a file on disk and
// returns its path.
type OfficeGenerator interface {
	GenerateSlides(ctx context.Context, title string, slides []Slide) (path string, err error)
	GenerateDocument(ctx context.Context, title string, sections []Section) (path string, err error)
	GenerateSpreadsheet(ctx context.Context, title string, rows [][]string) (path string, err error)
}

// Slide is one slide of a generated presentation.
type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// Section is one section of a generated document.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// officeDoc is the JSON shape the model is prompted to emit: a closed
// union of kind-tagged structures.
type officeDoc struct {
	Kind     string     `json:"kind"` // "slides", "document", or "spreadsheet"
	Title    string     `json:"title"`
	Slides   []Slide    `json:"slides,omitempty"`
	Sections []Section  `json:"sections,omitempty"`
	Rows     [][]string `json:"rows,omitempty"`
}

const officeSystemPrompt = `Generate a structured office document from the request. Respond with ONLY a single JSON object, no commentary:
{"kind": "slides"|"document"|"spreadsheet", "title": "...", "slides": [{"title":"...","bullets":["..."]}], "sections": [{"heading":"...","body":"..."}], "rows": [["..."]]}
Populate only the field matching "kind".`

// OfficeWorker generates structured JSON (slides/sections/rows) via the
// model, falling back to a fixed default structure on parse failure, then
// hands off to the external Office generators.
type OfficeWorker struct {
	gateway   aiclient.Gateway
	generator OfficeGenerator
}

// NewOfficeWorker builds an OfficeWorker.
func NewOfficeWorker(gateway aiclient.Gateway, generator OfficeGenerator) *OfficeWorker {
	return &OfficeWorker{gateway: gateway, generator: generator}
}

func (w *OfficeWorker) Execute(ctx context.Context, description string) (string, error) {
	resp, err := w.gateway.Complete(ctx, description, aiclient.Options{
		Temperature:  0.3,
		SystemPrompt: officeSystemPrompt,
	})

	var doc officeDoc
	if err != nil || !parseOfficeDoc(resp.Content, &doc) {
		doc = defaultOfficeDoc(description)
	}

	path, genErr := w.generate(ctx, doc)
	if genErr != nil {
		return "", fmt.Errorf("office: generation failed: %w", genErr)
	}
	return path, nil
}

func parseOfficeDoc(raw string, out *officeDoc) bool {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < 0 || end < start {
		return false
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), out); err != nil {
		return false
	}
	return out.Kind != ""
}

// defaultOfficeDoc is the fixed fallback structure used on parse failure:
// a single-section document restating the goal.
func defaultOfficeDoc(description string) officeDoc {
	return officeDoc{
		Kind:  "document",
		Title: "Untitled Report",
		Sections: []Section{
			{Heading: "Summary", Body: description},
		},
	}
}

func (w *OfficeWorker) generate(ctx context.Context, doc officeDoc) (string, error) {
	switch doc.Kind {
	case "slides":
		return w.generator.GenerateSlides(ctx, doc.Title, doc.Slides)
	case "spreadsheet":
		return w.generator.GenerateSpreadsheet(ctx, doc.Title, doc.Rows)
	default:
		return w.generator.GenerateDocument(ctx, doc.Title, doc.Sections)
	}
}
