package analysis

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/revenueops/warehouse-mcp/config"
	"github.com/revenueops/warehouse-mcp/pkg/toolresp"
	"github.com/revenueops/warehouse-mcp/pkg/validation"
)

// ProfileTableInput defines parameters for table profiling.
type ProfileTableInput struct {
	Table      string `json:"table" validate:"required"`
	MaxColumns int    `json:"max_columns,omitempty"`
}

// ColumnProfile carries one column's schema plus descriptive stats. The stat
// fields are pointers so a failed per-column query leaves them absent instead
// of reporting zeros.
type ColumnProfile struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Mode          string   `json:"mode"`
	NullCount     *int     `json:"null_count,omitempty"`
	NullPct       *float64 `json:"null_pct,omitempty"`
	DistinctCount *int     `json:"distinct_count,omitempty"`
}

type profileTableOutput struct {
	Success         bool            `json:"success"`
	Table           string          `json:"table"`
	RowCount        int             `json:"row_count"`
	ColumnsTotal    int             `json:"columns_total"`
	ColumnsProfiled int             `json:"columns_profiled"`
	Columns         []ColumnProfile `json:"columns"`
}

// handleProfileTable fetches the schema once, then issues one stats query per
// column up to the configured cap. A failing column degrades to schema-only
// output for that column; the profile as a whole still succeeds.
func (d *Domain) handleProfileTable(ctx context.Context, req mcp.CallToolRequest, in ProfileTableInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return toolresp.Error(toolresp.KindValidation, msg), nil
	}
	maxColumns := in.MaxColumns
	if maxColumns <= 0 {
		maxColumns = config.DefaultProfileColumnCap
	}

	schema, rowCount, err := d.describe(ctx, in.Table)
	if err != nil {
		return toolresp.Upstream(err), nil
	}

	profiled := schema
	if len(profiled) > maxColumns {
		profiled = profiled[:maxColumns]
	}

	out := profileTableOutput{
		Success:         true,
		Table:           in.Table,
		RowCount:        rowCount,
		ColumnsTotal:    len(schema),
		ColumnsProfiled: len(profiled),
	}
	for _, col := range profiled {
		profile := ColumnProfile{Name: col.Name, Type: col.Type, Mode: col.Mode}
		statsSQL := fmt.Sprintf(
			"SELECT COUNT(*) - COUNT(`%s`) AS null_count, COUNT(DISTINCT `%s`) AS distinct_count FROM `%s`",
			col.Name, col.Name, in.Table,
		)
		rs, err := d.wh.Query(ctx, statsSQL)
		if err != nil || rs.Len() == 0 {
			d.log.Warn().Str("table", in.Table).Str("column", col.Name).Err(err).Msg("column stats unavailable")
			out.Columns = append(out.Columns, profile)
			continue
		}
		nullCount := rs.Rows[0].Int("null_count")
		distinct := rs.Rows[0].Int("distinct_count")
		nullPct := 0.0
		if rowCount > 0 {
			nullPct = float64(nullCount) / float64(rowCount) * 100
		}
		profile.NullCount = &nullCount
		profile.NullPct = &nullPct
		profile.DistinctCount = &distinct
		out.Columns = append(out.Columns, profile)
	}
	return toolresp.JSON(out), nil
}
