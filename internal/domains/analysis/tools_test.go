package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/revenueops/warehouse-mcp/internal/warehouse"
)

// stubQuerier counts calls and answers from a SQL-substring dispatch table.
type stubQuerier struct {
	calls   int
	respond func(sql string) (*warehouse.ResultSet, error)
}

func (s *stubQuerier) Query(ctx context.Context, sql string) (*warehouse.ResultSet, error) {
	s.calls++
	if s.respond == nil {
		return &warehouse.ResultSet{}, nil
	}
	return s.respond(sql)
}

func (s *stubQuerier) Exec(ctx context.Context, sql string) error {
	s.calls++
	return nil
}

func newTestDomain(stub *stubQuerier) *Domain {
	return New(stub, "dev-im-platform.temp_fei_ai", zerolog.Nop())
}

func decodeResult(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestMissingRequiredArgumentSkipsWarehouse(t *testing.T) {
	stub := &stubQuerier{}
	d := newTestDomain(stub)
	ctx := context.Background()

	cases := []struct {
		name  string
		field string
		call  func() (*mcp.CallToolResult, error)
	}{
		{"list_tables", "dataset", func() (*mcp.CallToolResult, error) {
			return d.handleListTables(ctx, mcp.CallToolRequest{}, ListTablesInput{})
		}},
		{"describe_table", "table", func() (*mcp.CallToolResult, error) {
			return d.handleDescribeTable(ctx, mcp.CallToolRequest{}, DescribeTableInput{})
		}},
		{"sample_table", "table", func() (*mcp.CallToolResult, error) {
			return d.handleSampleTable(ctx, mcp.CallToolRequest{}, SampleTableInput{})
		}},
		{"run_query", "sql", func() (*mcp.CallToolResult, error) {
			return d.handleRunQuery(ctx, mcp.CallToolRequest{}, RunQueryInput{})
		}},
		{"profile_table", "table", func() (*mcp.CallToolResult, error) {
			return d.handleProfileTable(ctx, mcp.CallToolRequest{}, ProfileTableInput{})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := tc.call()
			require.NoError(t, err)
			payload := decodeResult(t, res)
			require.Equal(t, false, payload["success"])
			require.Equal(t, tc.field+" is required", payload["error"])
			require.Equal(t, "validation", payload["kind"])
		})
	}
	require.Zero(t, stub.calls, "no warehouse call may be issued for invalid input")
}

func TestListTablesHappyPath(t *testing.T) {
	stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		require.Contains(t, sql, "INFORMATION_SCHEMA.TABLES")
		return &warehouse.ResultSet{
			Columns: []string{"table_name"},
			Rows: []warehouse.Row{
				{"table_name": "hubspot_b2b_deal"},
				{"table_name": "hubspot_b2b_company"},
			},
		}, nil
	}}
	d := newTestDomain(stub)

	res, err := d.handleListTables(context.Background(), mcp.CallToolRequest{}, ListTablesInput{Dataset: "prod-im-data.mod_imx"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, true, payload["success"])
	require.Equal(t, float64(2), payload["count"])
	require.Equal(t, 1, stub.calls)
}

func TestDescribeTableRoundTrip(t *testing.T) {
	stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		if strings.Contains(sql, "INFORMATION_SCHEMA.COLUMNS") {
			return &warehouse.ResultSet{
				Columns: []string{"column_name", "data_type", "is_nullable"},
				Rows: []warehouse.Row{
					{"column_name": "id", "data_type": "INTEGER", "is_nullable": "NO"},
					{"column_name": "name", "data_type": "STRING", "is_nullable": "YES"},
				},
			}, nil
		}
		return &warehouse.ResultSet{
			Columns: []string{"row_count"},
			Rows:    []warehouse.Row{{"row_count": int64(42)}},
		}, nil
	}}
	d := newTestDomain(stub)

	res, err := d.handleDescribeTable(context.Background(), mcp.CallToolRequest{}, DescribeTableInput{Table: "p.d.t"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, true, payload["success"])
	require.Equal(t, "p.d.t", payload["table"])
	require.Equal(t, float64(42), payload["row_count"])

	columns := payload["columns"].([]any)
	require.Len(t, columns, 2)
	first := columns[0].(map[string]any)
	require.Equal(t, "id", first["name"])
	require.Equal(t, "INTEGER", first["type"])
	require.Equal(t, "REQUIRED", first["mode"])
	second := columns[1].(map[string]any)
	require.Equal(t, "name", second["name"])
	require.Equal(t, "STRING", second["type"])
	require.Equal(t, "NULLABLE", second["mode"])
}

func TestRunQueryTruncation(t *testing.T) {
	makeRows := func(n int) []warehouse.Row {
		rows := make([]warehouse.Row, n)
		for i := range rows {
			rows[i] = warehouse.Row{"n": int64(i)}
		}
		return rows
	}

	cases := []struct {
		resultRows int
		limit      int
		wantRows   int
		truncated  bool
	}{
		{resultRows: 10, limit: 3, wantRows: 3, truncated: true},
		{resultRows: 3, limit: 10, wantRows: 3, truncated: false},
		{resultRows: 5, limit: 5, wantRows: 5, truncated: false},
	}
	for _, tc := range cases {
		stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
			return &warehouse.ResultSet{Columns: []string{"n"}, Rows: makeRows(tc.resultRows)}, nil
		}}
		d := newTestDomain(stub)
		res, err := d.handleRunQuery(context.Background(), mcp.CallToolRequest{}, RunQueryInput{SQL: "SELECT 1", Limit: tc.limit})
		require.NoError(t, err)
		payload := decodeResult(t, res)
		require.Equal(t, float64(tc.wantRows), payload["rows"])
		require.Equal(t, tc.truncated, payload["truncated"])
		require.Len(t, payload["data"].([]any), tc.wantRows)
	}
}

func TestRunQueryUpstreamErrorVerbatim(t *testing.T) {
	stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		return nil, errors.New("table not found: nope")
	}}
	d := newTestDomain(stub)

	res, err := d.handleRunQuery(context.Background(), mcp.CallToolRequest{}, RunQueryInput{SQL: "SELECT * FROM nope"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, false, payload["success"])
	require.Equal(t, "table not found: nope", payload["error"])
	require.Equal(t, "upstream", payload["kind"])
}
