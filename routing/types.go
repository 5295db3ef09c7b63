// Package routing classifies an incoming goal into exactly one route: a
// fast, data-driven keyword/regex pass first, falling back to a constrained
// LLM call only on a miss.
package routing

// Kind is the route classification assigned to a goal.
type Kind string

const (
	Direct   Kind = "DIRECT"
	Tool     Kind = "TOOL"
	Reasoner Kind = "REASONER"
)

// Decision is the Router's sole output. ToolHint != "" implies Kind == Tool;
// every constructor in this package enforces that, never the caller.
type Decision struct {
	Kind        Kind
	ToolHint    string
	ArgHint     string
	Description string
}

func directDecision(description string) Decision {
	return Decision{Kind: Direct, Description: description}
}

func reasonerDecision(description string) Decision {
	return Decision{Kind: Reasoner, Description: description}
}

func toolDecision(toolHint, argHint string) Decision {
	return Decision{Kind: Tool, ToolHint: toolHint, ArgHint: argHint}
}
