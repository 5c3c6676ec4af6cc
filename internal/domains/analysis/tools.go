// Package analysis implements the general data-exploration domain: listing
// tables, describing schemas, sampling rows, running ad-hoc SQL, and
// profiling tables column by column.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/revenueops/warehouse-mcp/config"
	"github.com/revenueops/warehouse-mcp/internal/registry"
	"github.com/revenueops/warehouse-mcp/internal/warehouse"
	"github.com/revenueops/warehouse-mcp/pkg/toolresp"
	"github.com/revenueops/warehouse-mcp/pkg/validation"
)

// Domain bundles the exploration tools around an injected warehouse client.
type Domain struct {
	wh      warehouse.Querier
	dataset string
	log     zerolog.Logger
}

// New constructs the analysis domain. dataset is the default analysis dataset
// advertised in the schema resources.
func New(wh warehouse.Querier, dataset string, logger zerolog.Logger) *Domain {
	return &Domain{wh: wh, dataset: dataset, log: logger.With().Str("domain", "general_analysis").Logger()}
}

func (d *Domain) Name() string { return "general_analysis" }

func (d *Domain) Description() string {
	return "Day-to-day data exploration: schemas, samples, ad-hoc SQL, table profiling"
}

func (d *Domain) Status() string { return "active" }

// Register adds the domain's tools, resources, and prompts.
func (d *Domain) Register(s *server.MCPServer, reg *registry.Registry) {
	listTables := mcp.NewTool(
		"list_tables",
		mcp.WithDescription("List all tables in a warehouse dataset."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset ID (e.g. 'prod-im-data.mod_imx')")),
	)
	s.AddTool(listTables, mcp.NewTypedToolHandler(d.handleListTables))
	reg.Register(d.Name(), listTables)

	describeTable := mcp.NewTool(
		"describe_table",
		mcp.WithDescription("Get schema (column names, types, modes) and row count for a table."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Fully-qualified table ID (e.g. 'prod-im-data.mod_imx.hubspot_b2b_deal')")),
	)
	s.AddTool(describeTable, mcp.NewTypedToolHandler(d.handleDescribeTable))
	reg.Register(d.Name(), describeTable)

	sampleTable := mcp.NewTool(
		"sample_table",
		mcp.WithDescription("Get a quick sample of rows from a table. No SQL needed."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Fully-qualified table ID")),
		mcp.WithNumber("rows", mcp.DefaultNumber(config.DefaultSampleRows), mcp.Min(1), mcp.Description("Number of sample rows")),
	)
	s.AddTool(sampleTable, mcp.NewTypedToolHandler(d.handleSampleTable))
	reg.Register(d.Name(), sampleTable)

	runQuery := mcp.NewTool(
		"run_query",
		mcp.WithDescription("Run a SQL query against the warehouse and return results."),
		mcp.WithString("sql", mcp.Required(), mcp.Description("SQL statement to run")),
		mcp.WithNumber("limit", mcp.DefaultNumber(config.DefaultQueryRowLimit), mcp.Min(1), mcp.Description("Max rows to return")),
	)
	s.AddTool(runQuery, mcp.NewTypedToolHandler(d.handleRunQuery))
	reg.Register(d.Name(), runQuery)

	profileTable := mcp.NewTool(
		"profile_table",
		mcp.WithDescription("Profile a table: per-column null counts, null percentage, and distinct counts."),
		mcp.WithString("table", mcp.Required(), mcp.Description("Fully-qualified table ID")),
		mcp.WithNumber("max_columns", mcp.DefaultNumber(config.DefaultProfileColumnCap), mcp.Min(1), mcp.Description("Max columns to profile")),
	)
	s.AddTool(profileTable, mcp.NewTypedToolHandler(d.handleProfileTable))
	reg.Register(d.Name(), profileTable)

	d.registerResources(s)
	d.registerPrompts(s)
}

// --- list_tables ---

// ListTablesInput defines parameters for dataset table listing.
type ListTablesInput struct {
	Dataset string `json:"dataset" validate:"required"`
}

type listTablesOutput struct {
	Success bool     `json:"success"`
	Dataset string   `json:"dataset"`
	Tables  []string `json:"tables"`
	Count   int      `json:"count"`
}

func (d *Domain) handleListTables(ctx context.Context, req mcp.CallToolRequest, in ListTablesInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return toolresp.Error(toolresp.KindValidation, msg), nil
	}
	sql := fmt.Sprintf("SELECT table_name FROM `%s`.INFORMATION_SCHEMA.TABLES ORDER BY table_name", in.Dataset)
	rs, err := d.wh.Query(ctx, sql)
	if err != nil {
		return toolresp.Upstream(err), nil
	}
	tables := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		tables = append(tables, row.Str("table_name"))
	}
	return toolresp.JSON(listTablesOutput{Success: true, Dataset: in.Dataset, Tables: tables, Count: len(tables)}), nil
}

// --- describe_table ---

// DescribeTableInput defines parameters for schema description.
type DescribeTableInput struct {
	Table string `json:"table" validate:"required"`
}

// ColumnSchema is one column of a described table.
type ColumnSchema struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Mode string `json:"mode"`
}

type describeTableOutput struct {
	Success  bool           `json:"success"`
	Table    string         `json:"table"`
	RowCount int            `json:"row_count"`
	Columns  []ColumnSchema `json:"columns"`
}

func (d *Domain) handleDescribeTable(ctx context.Context, req mcp.CallToolRequest, in DescribeTableInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return toolresp.Error(toolresp.KindValidation, msg), nil
	}
	columns, rowCount, err := d.describe(ctx, in.Table)
	if err != nil {
		return toolresp.Upstream(err), nil
	}
	return toolresp.JSON(describeTableOutput{Success: true, Table: in.Table, RowCount: rowCount, Columns: columns}), nil
}

// describe fetches column metadata and the row count for a fully-qualified
// table. Shared with the profiler.
func (d *Domain) describe(ctx context.Context, table string) ([]ColumnSchema, int, error) {
	dataset, name := splitTableID(table)
	schemaSQL := fmt.Sprintf(
		"SELECT column_name, data_type, is_nullable FROM `%s`.INFORMATION_SCHEMA.COLUMNS WHERE table_name = '%s' ORDER BY ordinal_position",
		dataset, name,
	)
	rs, err := d.wh.Query(ctx, schemaSQL)
	if err != nil {
		return nil, 0, err
	}
	columns := make([]ColumnSchema, 0, rs.Len())
	for _, row := range rs.Rows {
		mode := "REQUIRED"
		if strings.EqualFold(row.Str("is_nullable"), "YES") {
			mode = "NULLABLE"
		}
		columns = append(columns, ColumnSchema{
			Name: row.Str("column_name"),
			Type: row.Str("data_type"),
			Mode: mode,
		})
	}
	countRS, err := d.wh.Query(ctx, fmt.Sprintf("SELECT COUNT(*) AS row_count FROM `%s`", table))
	if err != nil {
		return nil, 0, err
	}
	rowCount := 0
	if countRS.Len() > 0 {
		rowCount = countRS.Rows[0].Int("row_count")
	}
	return columns, rowCount, nil
}

// --- sample_table ---

// SampleTableInput defines parameters for row sampling.
type SampleTableInput struct {
	Table string `json:"table" validate:"required"`
	Rows  int    `json:"rows,omitempty"`
}

type sampleTableOutput struct {
	Success    bool             `json:"success"`
	Table      string           `json:"table"`
	SampleRows int              `json:"sample_rows"`
	Columns    []string         `json:"columns"`
	Data       []map[string]any `json:"data"`
}

func (d *Domain) handleSampleTable(ctx context.Context, req mcp.CallToolRequest, in SampleTableInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return toolresp.Error(toolresp.KindValidation, msg), nil
	}
	rows := in.Rows
	if rows <= 0 {
		rows = config.DefaultSampleRows
	}
	rs, err := d.wh.Query(ctx, fmt.Sprintf("SELECT * FROM `%s` LIMIT %d", in.Table, rows))
	if err != nil {
		return toolresp.Upstream(err), nil
	}
	return toolresp.JSON(sampleTableOutput{
		Success:    true,
		Table:      in.Table,
		SampleRows: rows,
		Columns:    rs.Columns,
		Data:       rs.Records(),
	}), nil
}

// --- run_query ---

// RunQueryInput defines parameters for ad-hoc SQL.
type RunQueryInput struct {
	SQL   string `json:"sql" validate:"required"`
	Limit int    `json:"limit,omitempty"`
}

type runQueryOutput struct {
	Success   bool             `json:"success"`
	Rows      int              `json:"rows"`
	Columns   []string         `json:"columns"`
	Data      []map[string]any `json:"data"`
	Truncated bool             `json:"truncated"`
	Message   string           `json:"message"`
}

func (d *Domain) handleRunQuery(ctx context.Context, req mcp.CallToolRequest, in RunQueryInput) (*mcp.CallToolResult, error) {
	if msg := validation.ValidateStruct(in); msg != "" {
		return toolresp.Error(toolresp.KindValidation, msg), nil
	}
	limit := in.Limit
	if limit <= 0 {
		limit = config.DefaultQueryRowLimit
	}
	rs, err := d.wh.Query(ctx, in.SQL)
	if err != nil {
		return toolresp.Upstream(err), nil
	}
	kept, truncated := rs.Head(limit)
	msg := fmt.Sprintf("Query returned %d rows", kept.Len())
	if truncated {
		msg += " (truncated)"
	}
	return toolresp.JSON(runQueryOutput{
		Success:   true,
		Rows:      kept.Len(),
		Columns:   kept.Columns,
		Data:      kept.Records(),
		Truncated: truncated,
		Message:   msg,
	}), nil
}

// splitTableID separates a fully-qualified table ID into its dataset prefix
// and bare table name ("p.d.t" -> "p.d", "t").
func splitTableID(table string) (dataset, name string) {
	idx := strings.LastIndex(table, ".")
	if idx < 0 {
		return "", table
	}
	return table[:idx], table[idx+1:]
}
