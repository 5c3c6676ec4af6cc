package analysis

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerResources exposes the static schema catalogs.
func (d *Domain) registerResources(s *server.MCPServer) {
	s.AddResource(
		mcp.NewResource(
			"schema://warehouse",
			"Warehouse Schema",
			mcp.WithResourceDescription("Information about available warehouse tables and datasets"),
			mcp.WithMIMEType("application/json"),
		),
		d.readWarehouseSchema,
	)
	s.AddResource(
		mcp.NewResource(
			"schema://datasets",
			"Available Datasets",
			mcp.WithResourceDescription("List of commonly used datasets"),
			mcp.WithMIMEType("application/json"),
		),
		d.readDatasets,
	)
}

func (d *Domain) readWarehouseSchema(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload := map[string]any{
		"data_source": "warehouse",
		"commonly_used": []string{
			"prod-im-data.mod_imx.hubspot_b2b_deal",
			"prod-im-data.mod_imx.hubspot_b2b_company",
			d.dataset + ".v_model_3_levers",
			d.dataset + ".v_next_best_action",
		},
		"hint": "Use list_tables, describe_table, sample_table, run_query, or profile_table tools",
	}
	return jsonContents(req.Params.URI, payload)
}

func (d *Domain) readDatasets(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	payload := map[string]any{
		"datasets": []map[string]string{
			{"id": "prod-im-data.mod_imx", "description": "Production Hubspot and IMX data"},
			{"id": d.dataset, "description": "Analysis views and temp tables"},
		},
	}
	return jsonContents(req.Params.URI, payload)
}

// jsonContents wraps a payload as a single JSON resource content.
func jsonContents(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{mcp.TextResourceContents{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(data),
	}}, nil
}
