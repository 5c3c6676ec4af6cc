package job

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/revenueops/warehouse-mcp/internal/warehouse"

	_ "modernc.org/sqlite"
)

const testDataset = "dev.analysis"

func openTestStore(t *testing.T) *warehouse.Client {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return warehouse.NewClient(db, zerolog.Nop())
}

// seedLevers creates the levers view and both output tables, then inserts
// weeks of steadily growing history with a deliberately strong win_rate_pct
// signal.
func seedLevers(t *testing.T, c *warehouse.Client, weeks int) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, c.Exec(ctx, fmt.Sprintf(
		"CREATE TABLE `%s.v_model_3_levers` (week TEXT, total_mrr REAL, mrr_change REAL, win_rate_pct REAL, at_risk_pct REAL, at_risk_deals INTEGER, pipeline_growth REAL, pipeline_growth_pct REAL, pipeline_velocity REAL, new_wins REAL)",
		testDataset)))
	require.NoError(t, c.Exec(ctx, fmt.Sprintf(
		"CREATE TABLE `%s.t_forecast_feature_importance` (run_id TEXT, run_date TEXT, rank INTEGER, feature TEXT, lever TEXT, importance_pct REAL)",
		testDataset)))
	require.NoError(t, c.Exec(ctx, fmt.Sprintf(
		"CREATE TABLE `%s.t_forecast_predictions` (run_id TEXT, run_date TEXT, weeks_ahead INTEGER, predicted_mrr REAL, weekly_trend REAL, change_pct REAL)",
		testDataset)))

	for i := 0; i < weeks; i++ {
		winRate := 10 + float64(i)
		mrr := 100000 + winRate*2000
		require.NoError(t, c.Exec(ctx, fmt.Sprintf(
			"INSERT INTO `%s.v_model_3_levers` VALUES ('2026-%02d-01', %f, %f, %f, 20, 5, 3, 4, 45, 2)",
			testDataset, i+1, mrr, 2000.0, winRate)))
	}
}

func TestRunWritesBothOutputTables(t *testing.T) {
	c := openTestStore(t)
	seedLevers(t, c, 12)
	r := New(c, testDataset, zerolog.Nop())

	result, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)
	require.Equal(t, 12, result.Weeks)
	require.Len(t, result.Features, len(featureNames))
	require.Len(t, result.Points, 4)

	ctx := context.Background()
	imp, err := c.Query(ctx, fmt.Sprintf("SELECT * FROM `%s.t_forecast_feature_importance` ORDER BY rank", testDataset))
	require.NoError(t, err)
	require.Equal(t, len(featureNames), imp.Len())
	require.Equal(t, result.RunID, imp.Rows[0].Str("run_id"))
	require.Equal(t, 1, imp.Rows[0].Int("rank"))

	pred, err := c.Query(ctx, fmt.Sprintf("SELECT * FROM `%s.t_forecast_predictions` ORDER BY weeks_ahead", testDataset))
	require.NoError(t, err)
	require.Equal(t, 4, pred.Len())
	// Constant +2000 weekly change projects linearly.
	last := 100000 + (10+float64(11))*2000
	require.InDelta(t, last+2000, pred.Rows[0].Float("predicted_mrr"), 1e-6)
	require.InDelta(t, last+8000, pred.Rows[3].Float("predicted_mrr"), 1e-6)
}

func TestRunReplacesPreviousRun(t *testing.T) {
	c := openTestStore(t)
	seedLevers(t, c, 12)
	r := New(c, testDataset, zerolog.Nop())
	ctx := context.Background()

	first, err := r.Run(ctx)
	require.NoError(t, err)
	second, err := r.Run(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first.RunID, second.RunID)

	imp, err := c.Query(ctx, fmt.Sprintf("SELECT DISTINCT run_id FROM `%s.t_forecast_feature_importance`", testDataset))
	require.NoError(t, err)
	require.Equal(t, 1, imp.Len())
	require.Equal(t, second.RunID, imp.Rows[0].Str("run_id"))
}

func TestRunRejectsShortHistory(t *testing.T) {
	c := openTestStore(t)
	seedLevers(t, c, 3)
	r := New(c, testDataset, zerolog.Nop())

	_, err := r.Run(context.Background())
	require.ErrorContains(t, err, "at least 6 weeks")
}

func TestRunFailsWhenLeversViewMissing(t *testing.T) {
	c := openTestStore(t)
	r := New(c, testDataset, zerolog.Nop())

	_, err := r.Run(context.Background())
	require.ErrorContains(t, err, "load levers history")
}

func TestLeverMappingCoversAllFeatures(t *testing.T) {
	for _, name := range featureNames {
		require.Contains(t, leverByFeature, name)
	}
	require.Equal(t, "Trend", leverByFeature["mrr_lag1"])
	require.Equal(t, "Deal Close", leverByFeature["win_rate_pct"])
}

func TestRankFeaturesDescendingWithStableTies(t *testing.T) {
	imp := make([]float64, len(featureNames))
	imp[6] = 70 // win_rate_pct
	imp[0] = 30 // pipeline_growth
	features := rankFeatures(imp)

	require.Equal(t, "win_rate_pct", features[0].Feature)
	require.Equal(t, 1, features[0].Rank)
	require.Equal(t, "pipeline_growth", features[1].Feature)
	// Zero-importance features keep declaration order.
	require.Equal(t, "pipeline_growth_pct", features[2].Feature)
}
