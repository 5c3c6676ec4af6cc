package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/revenueops/warehouse-mcp/internal/warehouse"
)

func profileStub(rowCount int, failColumn string) *stubQuerier {
	return &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		switch {
		case strings.Contains(sql, "INFORMATION_SCHEMA.COLUMNS"):
			return &warehouse.ResultSet{
				Columns: []string{"column_name", "data_type", "is_nullable"},
				Rows: []warehouse.Row{
					{"column_name": "week", "data_type": "DATE", "is_nullable": "NO"},
					{"column_name": "total_mrr", "data_type": "FLOAT", "is_nullable": "YES"},
					{"column_name": "region", "data_type": "STRING", "is_nullable": "YES"},
				},
			}, nil
		case strings.Contains(sql, "COUNT(*) AS row_count"):
			return &warehouse.ResultSet{
				Columns: []string{"row_count"},
				Rows:    []warehouse.Row{{"row_count": int64(rowCount)}},
			}, nil
		default:
			if failColumn != "" && strings.Contains(sql, "`"+failColumn+"`") {
				return nil, errors.New("column stats query failed")
			}
			return &warehouse.ResultSet{
				Columns: []string{"null_count", "distinct_count"},
				Rows:    []warehouse.Row{{"null_count": int64(2), "distinct_count": int64(7)}},
			}, nil
		}
	}}
}

func TestProfileTableStats(t *testing.T) {
	d := newTestDomain(profileStub(10, ""))

	res, err := d.handleProfileTable(context.Background(), mcp.CallToolRequest{}, ProfileTableInput{Table: "p.d.levers"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, true, payload["success"])
	require.Equal(t, float64(10), payload["row_count"])

	columns := payload["columns"].([]any)
	require.Len(t, columns, 3)
	first := columns[0].(map[string]any)
	require.Equal(t, float64(2), first["null_count"])
	require.Equal(t, float64(20), first["null_pct"])
	require.Equal(t, float64(7), first["distinct_count"])
}

func TestProfileTableEmptyTableReportsZeroNullPct(t *testing.T) {
	d := newTestDomain(profileStub(0, ""))

	res, err := d.handleProfileTable(context.Background(), mcp.CallToolRequest{}, ProfileTableInput{Table: "p.d.empty"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, true, payload["success"])

	columns := payload["columns"].([]any)
	for _, c := range columns {
		col := c.(map[string]any)
		// Zero rows must yield null_pct 0, never NaN or a failure.
		require.Equal(t, float64(0), col["null_pct"])
	}
}

func TestProfileTableColumnFailureDegradesColumnOnly(t *testing.T) {
	d := newTestDomain(profileStub(10, "total_mrr"))

	res, err := d.handleProfileTable(context.Background(), mcp.CallToolRequest{}, ProfileTableInput{Table: "p.d.levers"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, true, payload["success"])

	columns := payload["columns"].([]any)
	require.Len(t, columns, 3)
	for _, c := range columns {
		col := c.(map[string]any)
		if col["name"] == "total_mrr" {
			require.NotContains(t, col, "null_count")
			require.NotContains(t, col, "null_pct")
			require.NotContains(t, col, "distinct_count")
		} else {
			require.Contains(t, col, "null_count")
		}
	}
}

func TestProfileTableColumnCap(t *testing.T) {
	stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		switch {
		case strings.Contains(sql, "INFORMATION_SCHEMA.COLUMNS"):
			rs := &warehouse.ResultSet{Columns: []string{"column_name", "data_type", "is_nullable"}}
			for _, name := range []string{"a", "b", "c", "d"} {
				rs.Rows = append(rs.Rows, warehouse.Row{"column_name": name, "data_type": "STRING", "is_nullable": "YES"})
			}
			return rs, nil
		case strings.Contains(sql, "COUNT(*) AS row_count"):
			return &warehouse.ResultSet{Columns: []string{"row_count"}, Rows: []warehouse.Row{{"row_count": int64(5)}}}, nil
		default:
			return &warehouse.ResultSet{
				Columns: []string{"null_count", "distinct_count"},
				Rows:    []warehouse.Row{{"null_count": int64(0), "distinct_count": int64(5)}},
			}, nil
		}
	}}
	d := newTestDomain(stub)

	res, err := d.handleProfileTable(context.Background(), mcp.CallToolRequest{}, ProfileTableInput{Table: "p.d.wide", MaxColumns: 2})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, float64(4), payload["columns_total"])
	require.Equal(t, float64(2), payload["columns_profiled"])
	require.Len(t, payload["columns"].([]any), 2)
	// schema fetch + count + 2 capped column queries
	require.Equal(t, 4, stub.calls)
}
