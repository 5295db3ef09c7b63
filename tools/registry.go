package tools

import (
	"context"
)

// Handler executes one tool invocation against already-validated arguments.
type Handler func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)

// Definition pairs a tool's schema with its handler.
type Definition struct {
	Schema  Schema
	Handler Handler
}

// Registry is the tool registry: name -> Definition.
type Registry struct {
	tools map[string]Definition
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Definition)}
}

// Register adds or replaces a tool definition.
func (r *Registry) Register(def Definition) {
	r.tools[def.Schema.Name] = def
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.tools[name]
	return def, ok
}

// Names returns every registered tool name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	return names
}

// NewDefaultRegistry builds a Registry carrying all eight tools in the
// external interface table.
func NewDefaultRegistry(httpTimeout HTTPTimeouts) *Registry {
	r := NewRegistry()
	r.Register(weatherTool())
	r.Register(searchWebTool(httpTimeout.SearchWeb))
	r.Register(searchNewsTool(httpTimeout.SearchNews))
	r.Register(searchWikipediaTool(httpTimeout.Wikipedia))
	r.Register(readURLTool(httpTimeout.ReadURL))
	r.Register(calculateTool())
	r.Register(currentTimeTool())
	r.Register(executeCommandTool(httpTimeout.ExecuteCommand))
	return r
}

// HTTPTimeouts carries the per-tool network timeouts: weather 10s,
// read_url 15s, wikipedia 10s, execute_command 30s. search_web and
// search_news share the weather timeout class (keyless HTML/JSON
// endpoints). The Weather value is not applied: weatherTool takes no
// timeout, so the weather handler is bounded only by the caller's context
// and its retry budget.
type HTTPTimeouts struct {
	Weather        int
	SearchWeb      int
	SearchNews     int
	Wikipedia      int
	ReadURL        int
	ExecuteCommand int
}

// DefaultHTTPTimeouts returns the default per-tool timeout table, seconds.
func DefaultHTTPTimeouts() HTTPTimeouts {
	return HTTPTimeouts{
		Weather:        10,
		SearchWeb:      10,
		SearchNews:     10,
		Wikipedia:      10,
		ReadURL:        15,
		ExecuteCommand: 30,
	}
}
