package tools

import (
	"context"
	"testing"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/stretchr/testify/require"
)

func registryWithFake(name string, schema Schema, handler Handler) *Registry {
	r := NewRegistry()
	r.Register(Definition{Schema: schema, Handler: handler})
	return r
}

func TestDispatchSuccessPath(t *testing.T) {
	schema := Schema{Name: "search_web", Parameters: []Param{{Name: "query", Required: true}}}
	r := registryWithFake("search_web", schema, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"query": args["query"], "results": []map[string]interface{}{}}, nil
	})
	d := NewDispatcher(r, nil)

	res := d.Dispatch(context.Background(), Call{Name: "search_web", ArgHint: "golang generics", Text: "search for golang generics"})
	require.True(t, res.Success)
	require.Equal(t, "golang generics", res.Payload["query"])
}

func TestDispatchRepairsForeignArgKey(t *testing.T) {
	schema := Schema{Name: "search_web", Parameters: []Param{{Name: "query", Required: true}}}
	var seenArgs map[string]interface{}
	r := registryWithFake("search_web", schema, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		seenArgs = args
		return map[string]interface{}{"query": args["query"]}, nil
	})
	d := NewDispatcher(r, nil)
	d.Dispatch(context.Background(), Call{Name: "search_web", ArgHint: "Seoul weather", Text: "Seoul weather"})

	_, hasQuery := seenArgs["query"]
	require.True(t, hasQuery)

	repaired := repairSchema(schema, map[string]interface{}{"location": "Seoul weather"})
	require.Equal(t, "Seoul weather", repaired["query"])
}

func TestDispatchSemanticErrorDetectionReclassifiesSuccess(t *testing.T) {
	schema := Schema{Name: "read_url", Parameters: []Param{{Name: "url", Required: true}}}
	r := registryWithFake("read_url", schema, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"content": "Error 404: Not Found"}, nil
	})
	d := NewDispatcher(r, nil)

	res := d.Dispatch(context.Background(), Call{Name: "read_url", ArgHint: "http://example.com/missing", Text: "read http://example.com/missing"})
	require.False(t, res.Success)
}

func TestDispatchRepairRetryOnFailure(t *testing.T) {
	schema := Schema{Name: "calculate", Parameters: []Param{{Name: "expression", Required: true}}}
	attempts := 0
	r := registryWithFake("calculate", schema, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		attempts++
		if attempts == 1 {
			return nil, errTest("bad expression")
		}
		return map[string]interface{}{"expression": args["expression"], "result": 12.0}, nil
	})

	m := aiclient.NewMock()
	m.Responder = func(prompt string, opts aiclient.Options) (*aiclient.Response, error) {
		return &aiclient.Response{Content: `{"expression": "3*4"}`}, nil
	}
	gw := aiclient.NewLockedGateway(m)

	d := NewDispatcher(r, gw)
	res := d.Dispatch(context.Background(), Call{Name: "calculate", ArgHint: "three times four", Text: "calculate three times four"})
	require.True(t, res.Success)
	require.Equal(t, 2, attempts)
}

func TestDispatchRepairBoundedToOneRetry(t *testing.T) {
	schema := Schema{Name: "calculate", Parameters: []Param{{Name: "expression", Required: true}}}
	attempts := 0
	r := registryWithFake("calculate", schema, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		attempts++
		return nil, errTest("always fails")
	})

	m := aiclient.NewMock()
	m.Responder = func(prompt string, opts aiclient.Options) (*aiclient.Response, error) {
		return &aiclient.Response{Content: `{"expression": "1+1"}`}, nil
	}
	gw := aiclient.NewLockedGateway(m)

	d := NewDispatcher(r, gw)
	res := d.Dispatch(context.Background(), Call{Name: "calculate", ArgHint: "bad", Text: "bad"})
	require.False(t, res.Success)
	require.Equal(t, 2, attempts) // original + exactly one repair retry
}

func TestDispatchDropsNaturalLanguageTimezoneHint(t *testing.T) {
	schema := Schema{Name: "get_current_time", Parameters: []Param{{Name: "timezone", Required: false}}}
	var seenArgs map[string]interface{}
	r := registryWithFake("get_current_time", schema, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		seenArgs = args
		return map[string]interface{}{"timezone": "UTC", "datetime": "2026-01-01T00:00:00Z"}, nil
	})
	d := NewDispatcher(r, nil)

	res := d.Dispatch(context.Background(), Call{Name: "get_current_time", ArgHint: "what time is it?", Text: "what time is it?"})
	require.True(t, res.Success)
	_, hasTimezone := seenArgs["timezone"]
	require.False(t, hasTimezone, "a natural-language hint must not be passed as a timezone")
}

func TestDispatchKeepsValidTimezoneHint(t *testing.T) {
	schema := Schema{Name: "get_current_time", Parameters: []Param{{Name: "timezone", Required: false}}}
	var seenArgs map[string]interface{}
	r := registryWithFake("get_current_time", schema, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		seenArgs = args
		return map[string]interface{}{"timezone": args["timezone"]}, nil
	})
	d := NewDispatcher(r, nil)

	res := d.Dispatch(context.Background(), Call{Name: "get_current_time", ArgHint: "Asia/Seoul", Text: "time in Seoul"})
	require.True(t, res.Success)
	require.Equal(t, "Asia/Seoul", seenArgs["timezone"])
}

func TestRejectAsCommandRejectsInstructionsAndCJK(t *testing.T) {
	require.True(t, rejectAsCommand("Check if the server is running now"))
	require.True(t, rejectAsCommand("서버 확인해줘"))
	require.False(t, rejectAsCommand("uname -a"))
}

func TestResolveCommandRecognizesSingleVersionCheck(t *testing.T) {
	require.Equal(t, "uv --version", resolveCommand("uv version?", "uv version?"))
}

func TestResolveCommandCombinesMultipleToolsFromFallbackText(t *testing.T) {
	hint := "Check if uv is installed"
	text := "Check if uv is installed and python version"
	require.Equal(t, "uv --version && python --version", resolveCommand(hint, text))
}

func TestInferCommandFallsBackToVersionCheck(t *testing.T) {
	require.Equal(t, "uv --version && python --version", inferCommand("Check if uv is installed and python version"))
}

func TestDispatchWiresFullRequestIntoCommandInference(t *testing.T) {
	schema := Schema{Name: "execute_command", Parameters: []Param{{Name: "command", Required: true}}}
	var seenArgs map[string]interface{}
	r := registryWithFake("execute_command", schema, func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		seenArgs = args
		return map[string]interface{}{"command": args["command"], "output": ""}, nil
	})
	d := NewDispatcher(r, nil)

	d.Dispatch(context.Background(), Call{
		Name:    "execute_command",
		ArgHint: "Check if uv is installed",
		Text:    "Check if uv is installed and python version",
	})

	require.Equal(t, "uv --version && python --version", seenArgs["command"])
}

type testError string

func (e testError) Error() string { return string(e) }
func errTest(s string) error      { return testError(s) }
