package pipeline

import (
	"testing"

	"github.com/gyunggyung/Tiny-MoA/routing"
	"github.com/stretchr/testify/require"
)

func TestBuildSearchThenSummarize(t *testing.T) {
	p := Build("search for the gpt-5 release notes then summarize", routing.Decision{})
	require.Len(t, p, 2)
	require.Equal(t, routing.Tool, p[0].Route)
	require.Equal(t, "search_web", p[0].ToolHint)
	require.Equal(t, routing.Direct, p[1].Route)
	require.Equal(t, 1, p[1].ContextFromStep)
	require.True(t, Acyclic(p))
}

func TestBuildFallsBackToSingleton(t *testing.T) {
	decision := routing.Decision{Kind: routing.Tool, ToolHint: "get_weather", ArgHint: "Seoul"}
	p := Build("what's the weather in Seoul", decision)
	require.Len(t, p, 1)
	require.Equal(t, decision.Kind, p[0].Route)
	require.Equal(t, decision.ToolHint, p[0].ToolHint)
	require.True(t, Acyclic(p))
}

func TestAcyclicRejectsForwardReference(t *testing.T) {
	p := Pipeline{
		{Index: 1, ContextFromStep: 2},
		{Index: 2},
	}
	require.False(t, Acyclic(p))
}
