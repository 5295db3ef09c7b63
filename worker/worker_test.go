package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/gyunggyung/Tiny-MoA/tools"
	"github.com/stretchr/testify/require"
)

func mockGateway(fn func(prompt string) (string, error)) aiclient.Gateway {
	m := aiclient.NewMock()
	m.Responder = func(prompt string, opts aiclient.Options) (*aiclient.Response, error) {
		content, err := fn(prompt)
		if err != nil {
			return nil, err
		}
		return &aiclient.Response{Content: content}, nil
	}
	return aiclient.NewLockedGateway(m)
}

func TestDirectWorkerPrependsHistory(t *testing.T) {
	var seenPrompt string
	gw := mockGateway(func(prompt string) (string, error) {
		seenPrompt = prompt
		return "an answer", nil
	})
	w := NewDirectWorker(gw, "earlier: discussed Go generics")
	out, err := w.Execute(context.Background(), "summarize that")
	require.NoError(t, err)
	require.Equal(t, "an answer", out)
	require.Contains(t, seenPrompt, "earlier: discussed Go generics")
}

func TestExtractFileReferencesStripsTokens(t *testing.T) {
	paths, stripped := ExtractFileReferences("summarize @[notes.md] and @[report.pdf] please")
	require.Equal(t, []string{"notes.md", "report.pdf"}, paths)
	require.NotContains(t, stripped, "@[")
}

type fakeRetriever struct {
	ingested []string
	queried  string
}

func (f *fakeRetriever) Ingest(ctx context.Context, path string) (string, error) {
	f.ingested = append(f.ingested, path)
	return "ok", nil
}

func (f *fakeRetriever) Query(ctx context.Context, text string) (string, error) {
	f.queried = text
	return "--- Reference Material ---\ncontext for: " + text, nil
}

func TestResearchWorkerIngestsThenQueries(t *testing.T) {
	r := &fakeRetriever{}
	w := NewResearchWorker(r)
	out, err := w.Execute(context.Background(), "summarize @[notes.md]")
	require.NoError(t, err)
	require.Equal(t, []string{"notes.md"}, r.ingested)
	require.Contains(t, out, "Reference Material")
}

func TestWriterWorkerSavesReport(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "cowork_result.md")

	gw := mockGateway(func(prompt string) (string, error) {
		return "Final polished document.", nil
	})
	w := NewWriterWorker(gw, "", dest)
	out, err := w.Execute(context.Background(), "write the report")
	require.NoError(t, err)
	require.Equal(t, "Final polished document.", out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "Final polished document.", string(data))
}

type fakeGenerator struct {
	lastKind string
}

func (f *fakeGenerator) GenerateSlides(ctx context.Context, title string, slides []Slide) (string, error) {
	f.lastKind = "slides"
	return "/tmp/deck.pptx", nil
}
func (f *fakeGenerator) GenerateDocument(ctx context.Context, title string, sections []Section) (string, error) {
	f.lastKind = "document"
	return "/tmp/doc.docx", nil
}
func (f *fakeGenerator) GenerateSpreadsheet(ctx context.Context, title string, rows [][]string) (string, error) {
	f.lastKind = "spreadsheet"
	return "/tmp/sheet.xlsx", nil
}

func TestOfficeWorkerFallsBackOnParseFailure(t *testing.T) {
	gw := mockGateway(func(prompt string) (string, error) {
		return "not valid json at all", nil
	})
	gen := &fakeGenerator{}
	w := NewOfficeWorker(gw, gen)
	path, err := w.Execute(context.Background(), "make a report about Q3")
	require.NoError(t, err)
	require.Equal(t, "document", gen.lastKind)
	require.Equal(t, "/tmp/doc.docx", path)
}

func TestOfficeWorkerParsesSlidesKind(t *testing.T) {
	gw := mockGateway(func(prompt string) (string, error) {
		return `{"kind":"slides","title":"Q3 Update","slides":[{"title":"Intro","bullets":["a","b"]}]}`, nil
	})
	gen := &fakeGenerator{}
	w := NewOfficeWorker(gw, gen)
	_, err := w.Execute(context.Background(), "make slides")
	require.NoError(t, err)
	require.Equal(t, "slides", gen.lastKind)
}

func TestInferToolAndArgHonorsExplicitPrefix(t *testing.T) {
	tool, arg := inferToolAndArg("search_web: latest Go release notes")
	require.Equal(t, "search_web", tool)
	require.Equal(t, "latest Go release notes", arg)

	tool, arg = inferToolAndArg("execute_command: uv --version")
	require.Equal(t, "execute_command", tool)
	require.Equal(t, "uv --version", arg)
}

func TestInferToolAndArgDefaultsWeatherToSeoul(t *testing.T) {
	tool, arg := inferToolAndArg("check the weather too")
	require.Equal(t, "get_weather", tool)
	require.Equal(t, "Seoul", arg)
}

func TestToolWorkerInfersWeatherCity(t *testing.T) {
	registry := tools.NewRegistry()
	var seenArgs map[string]interface{}
	registry.Register(tools.Definition{
		Schema: tools.Schema{Name: "get_weather", Parameters: []tools.Param{{Name: "location", Required: true}}},
		Handler: func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
			seenArgs = args
			return map[string]interface{}{"location": args["location"], "temperature": 20.0}, nil
		},
	})
	dispatcher := tools.NewDispatcher(registry, nil)
	w := NewToolWorker(dispatcher)

	out, err := w.Execute(context.Background(), "what's the weather in Seoul today")
	require.NoError(t, err)
	require.Contains(t, out, "20")
	require.Equal(t, "Seoul", seenArgs["location"])
}
