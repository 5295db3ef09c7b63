package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskLifecycle(t *testing.T) {
	tk := NewTask("search for penguins", AgentTool)
	require.Equal(t, Pending, tk.Status)
	require.Empty(t, tk.Result)

	require.NoError(t, tk.Start())
	require.Equal(t, Running, tk.Status)

	require.NoError(t, tk.Complete("found 5 results"))
	require.Equal(t, Completed, tk.Status)
	require.Equal(t, "found 5 results", tk.Result)
	require.True(t, tk.Terminal())
}

func TestTaskCannotSkipRunning(t *testing.T) {
	tk := NewTask("x", AgentDirect)
	require.Error(t, tk.Complete("result"))
}

func TestTaskFailTransition(t *testing.T) {
	tk := NewTask("x", AgentTool)
	require.NoError(t, tk.Start())
	require.NoError(t, tk.Fail("timeout"))
	require.Equal(t, Failed, tk.Status)
	require.Equal(t, "timeout", tk.Result)
}

func TestParallelizable(t *testing.T) {
	require.True(t, Parallelizable(AgentTool))
	require.True(t, Parallelizable(AgentResearch))
	require.False(t, Parallelizable(AgentDirect))
	require.False(t, Parallelizable(AgentWriter))
	require.False(t, Parallelizable(AgentOffice))
}

func TestQueueByAgentAndDependencies(t *testing.T) {
	q := NewQueue()
	a := NewTask("research X", AgentResearch)
	b := NewTask("write report", AgentWriter)
	b.Dependencies[a.ID] = true
	q.Push(a)
	q.Push(b)

	require.False(t, q.DependenciesSatisfied(b))
	require.NoError(t, a.Start())
	require.NoError(t, a.Complete("context"))
	require.True(t, q.DependenciesSatisfied(b))

	parallel := q.ByAgent(AgentTool, AgentResearch)
	require.Len(t, parallel, 1)
	require.Equal(t, a.ID, parallel[0].ID)
}
