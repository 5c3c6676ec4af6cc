package registry

import (
	"context"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// DomainFilter hides the tools of disabled domains from discovery. Disable
// domains by listing them in WMCP_DISABLED_DOMAINS (comma-separated).
type DomainFilter struct {
	registry *Registry
	disabled map[string]bool
}

// NewDomainFilterFromEnv constructs a filter using WMCP_DISABLED_DOMAINS.
func NewDomainFilterFromEnv(reg *Registry) *DomainFilter {
	disabled := map[string]bool{}
	for _, name := range strings.Split(os.Getenv("WMCP_DISABLED_DOMAINS"), ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			disabled[name] = true
		}
	}
	return &DomainFilter{registry: reg, disabled: disabled}
}

// FilterTools implements server tool filtering semantics.
func (f *DomainFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if len(f.disabled) == 0 {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if f.disabled[strings.ToLower(f.registry.Domain(t.Name))] {
			continue
		}
		out = append(out, t)
	}
	return out
}
