package routing

import (
	"context"
	"testing"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/stretchr/testify/require"
)

func TestTierARecencyRoutesToSearchWeb(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "What is the latest version of gpt-5?")
	require.Equal(t, Tool, d.Kind)
	require.Equal(t, "search_web", d.ToolHint)
}

func TestTierASocialRoutesDirect(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "Hello, thanks for your help!")
	require.Equal(t, Direct, d.Kind)
}

func TestTierAConceptQueryKnownTerm(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "What is kubernetes?")
	require.Equal(t, Tool, d.Kind)
	require.Equal(t, "search_web", d.ToolHint)
}

func TestTierAConceptQueryUnknownTerm(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "What is love?")
	require.Equal(t, Direct, d.Kind)
}

func TestTierACalculation(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "calculate 12 * 7")
	require.Equal(t, Tool, d.Kind)
	require.Equal(t, "calculate", d.ToolHint)
}

func TestTierACoding(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "Write a function implementing binary search")
	require.Equal(t, Reasoner, d.Kind)
}

func TestTierAWeatherWithHistoricalModifierRoutesSearch(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "What was the weather in Seoul last week?")
	require.Equal(t, Tool, d.Kind)
	require.Equal(t, "search_web", d.ToolHint)
}

func TestTierAWeatherWithoutHistoricalModifier(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "What's the weather in Seoul today?")
	require.Equal(t, Tool, d.Kind)
	require.Equal(t, "get_weather", d.ToolHint)
}

func TestTierAVersionCheckRoutesToExecuteCommand(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "uv version?")
	require.Equal(t, Tool, d.Kind)
	require.Equal(t, "execute_command", d.ToolHint)

	d = r.Route(context.Background(), "Check if uv is installed and python version")
	require.Equal(t, Tool, d.Kind)
	require.Equal(t, "execute_command", d.ToolHint)
}

func TestTierAVersionWithoutKnownTargetDoesNotMatchCommand(t *testing.T) {
	r := New(nil, nil, nil)
	d := r.Route(context.Background(), "which translation of the bible is the standard version")
	require.NotEqual(t, "execute_command", d.ToolHint)
}

func TestTierBFallsBackWhenTierAMisses(t *testing.T) {
	m := aiclient.NewMock()
	m.Responder = func(prompt string, opts aiclient.Options) (*aiclient.Response, error) {
		return &aiclient.Response{Content: `Sure, here you go: {"route": "REASONER", "specialist_prompt": "explain the halting problem", "tool_hint": ""}`}, nil
	}
	gw := aiclient.NewLockedGateway(m)

	r := New(nil, gw, nil)
	d := r.Route(context.Background(), "is there a way to know if a program will ever stop running")
	require.Equal(t, Reasoner, d.Kind)
	require.Equal(t, "explain the halting problem", d.Description)
}

func TestRouteNeverFailsWhenGatewayErrors(t *testing.T) {
	m := aiclient.NewMock()
	m.Responder = func(prompt string, opts aiclient.Options) (*aiclient.Response, error) {
		return nil, context.DeadlineExceeded
	}
	gw := aiclient.NewLockedGateway(m)

	r := New(nil, gw, nil)
	d := r.Route(context.Background(), "some completely novel phrase with no rule match at all")
	require.Equal(t, Direct, d.Kind)
}

func TestToolHintImpliesToolKindInvariant(t *testing.T) {
	r := New(nil, nil, nil)
	texts := []string{
		"what's the weather like", "calculate 3+4", "search for penguins",
		"run command to list files", "latest news today",
	}
	for _, text := range texts {
		d := r.Route(context.Background(), text)
		if d.ToolHint != "" {
			require.Equal(t, Tool, d.Kind, "text=%q", text)
		}
	}
}
