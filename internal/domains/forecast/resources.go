package forecast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/revenueops/warehouse-mcp/config"
)

// registerResources exposes read-back views over the batch job's output
// tables.
func (d *Domain) registerResources(s *server.MCPServer) {
	s.AddResource(
		mcp.NewResource(
			"forecast://latest",
			"Latest MRR Forecast",
			mcp.WithResourceDescription("Predictions written by the most recent batch forecast run"),
			mcp.WithMIMEType("application/json"),
		),
		d.readLatest,
	)
	s.AddResource(
		mcp.NewResource(
			"forecast://feature_importance",
			"Forecast Feature Importance",
			mcp.WithResourceDescription("Ranked model features from the most recent batch forecast run"),
			mcp.WithMIMEType("application/json"),
		),
		d.readImportance,
	)
}

func (d *Domain) readLatest(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rs, err := d.wh.Query(ctx, fmt.Sprintf("SELECT * FROM `%s` ORDER BY weeks_ahead", d.views.Predictions))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.views.Predictions, err)
	}
	return jsonContents(req.Params.URI, map[string]any{
		"table":       d.views.Predictions,
		"predictions": rs.Records(),
	})
}

func (d *Domain) readImportance(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	features := d.asm.Features(ctx, config.DefaultImportanceRows)
	return jsonContents(req.Params.URI, map[string]any{
		"table":    d.views.Importance,
		"features": features,
	})
}

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
