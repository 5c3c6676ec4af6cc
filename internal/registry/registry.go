package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tmc/langchaingo/llms"
)

// Registry maintains the tool catalog built once at startup, keyed by tool
// name with the owning domain recorded for discovery filtering.
type Registry struct {
	mu           sync.RWMutex
	tools        map[string]mcp.Tool
	domainByTool map[string]string
}

// New constructs an empty Registry ready for domain registration.
func New() *Registry {
	return &Registry{
		tools:        map[string]mcp.Tool{},
		domainByTool: map[string]string{},
	}
}

// Register stores a tool definition under its owning domain.
func (r *Registry) Register(domain string, tool mcp.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name] = tool
	r.domainByTool[tool.Name] = domain
}

// Get returns a tool by name when present.
func (r *Registry) Get(name string) (mcp.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Domain returns the owning domain for a registered tool name.
func (r *Registry) Domain(toolName string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.domainByTool[toolName]
}

// Tools returns a stable-sorted list of registered tool definitions.
func (r *Registry) Tools(ctx context.Context) ([]mcp.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]mcp.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name < tools[j].Name
	})
	return tools, nil
}

// ModelContextSize exposes the configured model's context window, used to
// size the data block handed back by the narrative tools.
func (r *Registry) ModelContextSize(modelName string) int {
	return llms.GetModelContextSize(modelName)
}
