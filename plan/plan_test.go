package plan

import (
	"context"
	"testing"

	"github.com/gyunggyung/Tiny-MoA/aiclient"
	"github.com/gyunggyung/Tiny-MoA/task"
	"github.com/stretchr/testify/require"
)

func gatewayWithResponse(content string) aiclient.Gateway {
	m := aiclient.NewMock()
	m.Responder = func(prompt string, opts aiclient.Options) (*aiclient.Response, error) {
		return &aiclient.Response{Content: content}, nil
	}
	return aiclient.NewLockedGateway(m)
}

func TestBuildParsesResearchThenWriter(t *testing.T) {
	gw := gatewayWithResponse(`[
		{"description": "research the history of Go", "agent": "research", "dependencies": []},
		{"description": "write a report on Go's history", "agent": "writer", "dependencies": ["research the history of Go"]}
	]`)

	q := Build(context.Background(), gw, "write me a report on Go's history")
	require.Equal(t, 2, q.Len())

	stages := Stages(q, false)
	require.Len(t, stages, 2)
	require.True(t, stages[0].Parallel)
	require.False(t, stages[1].Parallel)
	require.Len(t, stages[0].Tasks, 1)
	require.Len(t, stages[1].Tasks, 1)
	require.True(t, q.DependenciesSatisfied(stages[0].Tasks[0]))
	require.False(t, q.DependenciesSatisfied(stages[1].Tasks[0]))
}

func TestBuildPostValidatesToolPrefix(t *testing.T) {
	gw := gatewayWithResponse(`[{"description": "search_web: latest Go release", "agent": "direct", "dependencies": []}]`)
	q := Build(context.Background(), gw, "find the latest Go release")
	require.Equal(t, task.AgentTool, q.All()[0].Agent)
}

func TestBuildPostValidatesOfficePrefix(t *testing.T) {
	gw := gatewayWithResponse(`[{"description": "create_ppt: quarterly update", "agent": "writer", "dependencies": []}]`)
	q := Build(context.Background(), gw, "make a slide deck")
	require.Equal(t, task.AgentOffice, q.All()[0].Agent)
}

func TestBuildFallsBackOnParseFailure(t *testing.T) {
	gw := gatewayWithResponse("I'm not quite sure how to plan this.")
	q := Build(context.Background(), gw, "do something vague")
	require.Equal(t, 1, q.Len())
	require.Equal(t, task.AgentDirect, q.All()[0].Agent)
	require.Equal(t, "do something vague", q.All()[0].Description)
}

func TestStagesSwapWhenRAGFirst(t *testing.T) {
	q := task.NewQueue()
	toolTask := task.NewTask("search_web: x", task.AgentTool)
	directTask := task.NewTask("summarize", task.AgentDirect)
	q.Push(toolTask)
	q.Push(directTask)

	stages := Stages(q, true)
	require.Len(t, stages, 2)
	require.False(t, stages[0].Parallel)
	require.Equal(t, directTask.ID, stages[0].Tasks[0].ID)
	require.True(t, stages[1].Parallel)
	require.Equal(t, toolTask.ID, stages[1].Tasks[0].ID)
}

func TestStagesKeepReasonerTasksInSequentialGroup(t *testing.T) {
	q := task.NewQueue()
	q.Push(task.NewTask("prove the loop terminates", task.AgentReasoner))
	q.Push(task.NewTask("search_web: x", task.AgentTool))

	stages := Stages(q, false)
	require.Len(t, stages[0].Tasks, 1)
	require.Len(t, stages[1].Tasks, 1)
	require.Equal(t, task.AgentReasoner, stages[1].Tasks[0].Agent)
}

func TestRequireNonEmpty(t *testing.T) {
	q := task.NewQueue()
	require.Error(t, RequireNonEmpty(q))
	q.Push(task.NewTask("x", task.AgentDirect))
	require.NoError(t, RequireNonEmpty(q))
}
