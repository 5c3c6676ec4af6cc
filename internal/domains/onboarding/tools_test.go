package onboarding

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

type stubQuerier struct {
	calls   int
	respond func(sql string) (*warehouse.ResultSet, error)
}

func (s *stubQuerier) Query(ctx context.Context, sql string) (*warehouse.ResultSet, error) {
	s.calls++
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

func funnelRows() *warehouse.ResultSet {
	return &warehouse.ResultSet{
		Columns: []string{"step", "step_order", "entered", "completed", "conversion_pct"},
		Rows: []warehouse.Row{
			{"step": "signup", "step_order": int64(1), "entered": int64(1000), "completed": int64(800), "conversion_pct": 80.0},
			{"step": "connect_data", "step_order": int64(2), "entered": int64(800), "completed": int64(400), "conversion_pct": 50.0},
		},
	}
}

func TestFunnelMissingDateRangeSkipsWarehouse(t *testing.T) {
	stub := &stubQuerier{}
	d := newTestDomain(stub)

	res, err := d.handleFunnel(context.Background(), mcp.CallToolRequest{}, FunnelInput{})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, false, payload["success"])
	require.Equal(t, "date_range is required", payload["error"])
	require.Equal(t, "validation", payload["kind"])
	require.Zero(t, stub.calls)
}

func TestFunnelLive(t *testing.T) {
	stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		require.Contains(t, sql, "v_onboarding_funnel")
		require.Contains(t, sql, "date_range = 'last_30_days'")
		return funnelRows(), nil
	}}
	d := newTestDomain(stub)

	res, err := d.handleFunnel(context.Background(), mcp.CallToolRequest{}, FunnelInput{DateRange: "last_30_days"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, true, payload["success"])
	require.Equal(t, "live", payload["status"])
	require.Equal(t, float64(2), payload["count"])
}

func TestFunnelMissingViewDegradesToPlaceholder(t *testing.T) {
	stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		return nil, errors.New("view v_onboarding_funnel not found")
	}}
	d := newTestDomain(stub)

	res, err := d.handleFunnel(context.Background(), mcp.CallToolRequest{}, FunnelInput{DateRange: "last_30_days"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, true, payload["success"])
	require.Equal(t, "placeholder", payload["status"])
	require.Contains(t, payload["message"], "not available")
	require.Contains(t, payload, "expected_shape")
}

func TestDropoffStepFilterAndNotFound(t *testing.T) {
	stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		require.Contains(t, sql, "step = 'connect_data'")
		return &warehouse.ResultSet{}, nil
	}}
	d := newTestDomain(stub)

	res, err := d.handleDropoff(context.Background(), mcp.CallToolRequest{}, DropoffInput{Step: "connect_data"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, false, payload["success"])
	require.Equal(t, "not_found", payload["kind"])
}

func TestCohortComparison(t *testing.T) {
	stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		switch {
		case strings.Contains(sql, "cohort = 'jan'"):
			return &warehouse.ResultSet{
				Columns: []string{"entered", "completed"},
				Rows:    []warehouse.Row{{"entered": int64(1000), "completed": int64(400)}},
			}, nil
		case strings.Contains(sql, "cohort = 'feb'"):
			return &warehouse.ResultSet{
				Columns: []string{"entered", "completed"},
				Rows:    []warehouse.Row{{"entered": int64(500), "completed": int64(300)}},
			}, nil
		default:
			return nil, errors.New("unexpected query: " + sql)
		}
	}}
	d := newTestDomain(stub)

	res, err := d.handleCohort(context.Background(), mcp.CallToolRequest{}, CohortInput{CohortA: "jan", CohortB: "feb"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, true, payload["success"])

	a := payload["cohort_a"].(map[string]any)
	b := payload["cohort_b"].(map[string]any)
	require.Equal(t, float64(40), a["conversion_pct"])
	require.Equal(t, float64(60), b["conversion_pct"])
	require.Equal(t, float64(-20), payload["conversion_gap"])
}

func TestCohortMissingArgument(t *testing.T) {
	stub := &stubQuerier{}
	d := newTestDomain(stub)

	res, err := d.handleCohort(context.Background(), mcp.CallToolRequest{}, CohortInput{CohortA: "jan"})
	require.NoError(t, err)
	payload := decodeResult(t, res)
	require.Equal(t, "cohort_b is required", payload["error"])
	require.Zero(t, stub.calls)
}

func TestReportSectionsDegradeIndependently(t *testing.T) {
	stub := &stubQuerier{respond: func(sql string) (*warehouse.ResultSet, error) {
		if strings.Contains(sql, "v_onboarding_dropoff") {
			return nil, errors.New("view v_onboarding_dropoff not found")
		}
		return funnelRows(), nil
	}}
	d := newTestDomain(stub)

	res, err := d.handleReport(context.Background(), mcp.CallToolRequest{}, ReportInput{})
	require.NoError(t, err)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)

	require.Contains(t, text.Text, "🚀 ONBOARDING HEALTH REPORT")
	require.Contains(t, text.Text, "signup")
	require.Contains(t, text.Text, "connect_data")
	require.Contains(t, text.Text, "not available yet")
}
