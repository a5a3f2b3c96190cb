package tool

import (
	"context"
	"sort"
	"sync"

	"agentgate"
)

// Handler is a function that executes a tool call and returns a result.
// The call contains the tool name, ID, and arguments as a JSON string.
type Handler func(ctx context.Context, call agentgate.ToolCall) (string, error)

// registeredTool combines a tool definition with its handler.
type registeredTool struct {
	tool    agentgate.Tool
	handler Handler
}

// Registry manages registered tools and their handlers.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]registeredTool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]registeredTool),
	}
}

// NewDefaultRegistry creates a registry pre-loaded with the gateway's local
// tools, sandboxed to basePath.
func NewDefaultRegistry(basePath string) *Registry {
	r := NewRegistry()
	r.MustRegister(NewReadFileTool(WithBasePath(basePath)))
	r.MustRegister(NewListDirTool(WithBasePath(basePath)))
	r.MustRegister(NewSearchFilesTool(WithSearchPath(basePath)))
	return r
}

// Register adds a tool with its handler to the registry.
// Returns an error if a tool with the same name is already registered.
func (r *Registry) Register(tool agentgate.Tool, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return &ErrToolAlreadyRegistered{Name: tool.Name}
	}
	r.tools[tool.Name] = registeredTool{tool: tool, handler: handler}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(tool agentgate.Tool, handler Handler) {
	if err := r.Register(tool, handler); err != nil {
		panic(err)
	}
}

// Names returns the sorted names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns all registered tool definitions.
func (r *Registry) Definitions() []agentgate.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]agentgate.Tool, 0, len(r.tools))
	for _, rt := range r.tools {
		defs = append(defs, rt.tool)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Has returns true if the registry has a tool with the given name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute runs the handler for the named tool. A handler error is folded
// into the result rather than returned, so tool failures flow back to the
// model instead of aborting the execution.
func (r *Registry) Execute(ctx context.Context, call agentgate.ToolCall) (agentgate.ToolResult, error) {
	r.mu.RLock()
	rt, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok {
		return agentgate.ToolResult{}, &ErrToolNotFound{Name: call.Name}
	}

	content, err := rt.handler(ctx, call)
	if err != nil {
		return agentgate.ToolResult{
			ToolCallID: call.ID,
			Content:    err.Error(),
			IsError:    true,
		}, nil
	}
	return agentgate.ToolResult{
		ToolCallID: call.ID,
		Content:    content,
	}, nil
}
