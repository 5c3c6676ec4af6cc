// Package domains defines the capability domains the server is composed of.
// Each domain independently declares its tool, resource, and prompt catalogs
// and registers them against the MCP server at startup.
package domains

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/revenueops/warehouse-mcp/internal/registry"
)

// Domain is one capability group: general analysis, MRR forecasting, the
// onboarding funnel, and the planned-but-empty domains.
type Domain interface {
	Name() string
	Description() string
	// Status is "active" for implemented domains, "planned" for placeholders.
	Status() string
	// Register adds the domain's tools, resources, and prompts to the server
	// and records tool ownership in the registry.
	Register(s *server.MCPServer, reg *registry.Registry)
}

// Placeholder is a declared domain with no capabilities yet. It appears in
// the domain catalog so clients can see what is coming.
type Placeholder struct {
	name        string
	description string
}

// NewPlaceholder declares a planned domain.
func NewPlaceholder(name, description string) Placeholder {
	return Placeholder{name: name, description: description}
}

func (p Placeholder) Name() string        { return p.name }
func (p Placeholder) Description() string { return p.description }
func (p Placeholder) Status() string      { return "planned" }

// Register is a no-op: placeholder domains expose nothing callable.
func (p Placeholder) Register(*server.MCPServer, *registry.Registry) {}

// catalogEntry is the JSON shape of one domain in the catalog resource.
type catalogEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// RegisterCatalog registers every domain and exposes domains://catalog, a
// JSON listing of all declared domains and their status.
func RegisterCatalog(s *server.MCPServer, reg *registry.Registry, all []Domain) {
	entries := make([]catalogEntry, 0, len(all))
	for _, d := range all {
		d.Register(s, reg)
		entries = append(entries, catalogEntry{Name: d.Name(), Description: d.Description(), Status: d.Status()})
	}

	s.AddResource(
		mcp.NewResource(
			"domains://catalog",
			"Domain Catalog",
			mcp.WithResourceDescription("All capability domains and whether they are active or planned"),
			mcp.WithMIMEType("application/json"),
		),
		func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			data, err := json.MarshalIndent(map[string]any{"domains": entries}, "", "  ")
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(data),
			}}, nil
		},
	)
}
