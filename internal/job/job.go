// Package job orchestrates the offline batch forecast run: load the weekly
// levers history, train the boosted-trees model, rank feature importance,
// project the trend forward, and replace both output tables.
package job

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/revenueops/warehouse-mcp/config"
	"github.com/revenueops/warehouse-mcp/internal/domains/forecast"
	"github.com/revenueops/warehouse-mcp/internal/gbm"
	"github.com/revenueops/warehouse-mcp/internal/warehouse"
)

// Store is the warehouse surface the job needs: reads plus full-table
// replacement. *warehouse.Client satisfies it.
type Store interface {
	Query(ctx context.Context, query string) (*warehouse.ResultSet, error)
	WriteTruncate(ctx context.Context, table string, columns []string, rows [][]any) error
}

// minTrainingWeeks is the smallest history the trainer accepts. One week is
// lost to lag features, and a handful more are needed for splits to exist.
const minTrainingWeeks = 6

// featureNames is the fixed training feature set, in matrix column order.
var featureNames = []string{
	"pipeline_growth",
	"pipeline_growth_pct",
	"at_risk_change",
	"at_risk_pct",
	"new_wins",
	"velocity_change",
	"win_rate_pct",
	"mrr_lag1",
}

// leverByFeature maps each model feature to the business lever reported in
// the weekly narrative.
var leverByFeature = map[string]string{
	"pipeline_growth":     "Pipeline Growth",
	"pipeline_growth_pct": "Pipeline Growth",
	"at_risk_change":      "At Risk",
	"at_risk_pct":         "At Risk",
	"new_wins":            "Deal Close",
	"velocity_change":     "Deal Close",
	"win_rate_pct":        "Deal Close",
	"mrr_lag1":            "Trend",
}

// RankedFeature is one row of the importance output table.
type RankedFeature struct {
	Rank          int
	Feature       string
	Lever         string
	ImportancePct float64
}

// Result summarizes one batch run.
type Result struct {
	RunID    string
	RunDate  string
	Weeks    int
	Features []RankedFeature
	Points   []forecast.Point
}

// Runner executes the batch forecast against one dataset.
type Runner struct {
	wh    Store
	views forecast.Views
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// New constructs a Runner over the default views of dataset.
func New(wh Store, dataset string, logger zerolog.Logger) *Runner {
	return &Runner{
		wh:    wh,
		views: forecast.DefaultViews(dataset),
		log:   logger.With().Str("component", "forecast_job").Logger(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Run executes one batch forecast and write-truncates both output tables,
// replacing the previous run entirely.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	rs, err := r.wh.Query(ctx, fmt.Sprintf("SELECT * FROM `%s` ORDER BY week", r.views.Levers))
	if err != nil {
		return nil, fmt.Errorf("load levers history: %w", err)
	}
	series := forecast.SeriesFromRows(rs.Rows)
	if len(series) < minTrainingWeeks {
		return nil, fmt.Errorf("need at least %d weeks of history, have %d", minTrainingWeeks, len(series))
	}

	X, y := buildMatrix(rs.Rows, series)
	model, err := gbm.Train(X, y, gbm.DefaultParams())
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}
	features := rankFeatures(model.Importances())
	points := forecast.Project(series, config.DefaultTrendWindow, config.DefaultForecastHorizon)

	result := &Result{
		RunID:    r.newID(),
		RunDate:  r.now().Format("2006-01-02"),
		Weeks:    len(series),
		Features: features,
		Points:   points,
	}
	if err := r.writeImportance(ctx, result); err != nil {
		return nil, err
	}
	if err := r.writePredictions(ctx, result); err != nil {
		return nil, err
	}
	r.log.Info().
		Str("run_id", result.RunID).
		Int("weeks", result.Weeks).
		Str("top_lever", features[0].Lever).
		Msg("batch forecast completed")
	return result, nil
}

// buildMatrix assembles the fixed 8-feature training matrix. The first week
// is dropped: lag and delta features need a prior observation.
func buildMatrix(rows []warehouse.Row, series []forecast.WeekMetrics) (X [][]float64, y []float64) {
	for i := 1; i < len(series); i++ {
		cur, prev := series[i], series[i-1]
		X = append(X, []float64{
			rows[i].Float("pipeline_growth"),
			cur.PipelineGrowthPct,
			cur.AtRiskPct - prev.AtRiskPct,
			cur.AtRiskPct,
			rows[i].Float("new_wins"),
			cur.PipelineVelocity - prev.PipelineVelocity,
			cur.WinRatePct,
			prev.TotalMRR,
		})
		y = append(y, cur.TotalMRR)
	}
	return X, y
}

// rankFeatures orders features by importance descending.
func rankFeatures(importances []float64) []RankedFeature {
	features := make([]RankedFeature, len(featureNames))
	for i, name := range featureNames {
		features[i] = RankedFeature{
			Feature:       name,
			Lever:         leverByFeature[name],
			ImportancePct: importances[i],
		}
	}
	sort.SliceStable(features, func(i, j int) bool {
		return features[i].ImportancePct > features[j].ImportancePct
	})
	for i := range features {
		features[i].Rank = i + 1
	}
	return features
}

func (r *Runner) writeImportance(ctx context.Context, result *Result) error {
	columns := []string{"run_id", "run_date", "rank", "feature", "lever", "importance_pct"}
	rows := make([][]any, 0, len(result.Features))
	for _, f := range result.Features {
		rows = append(rows, []any{result.RunID, result.RunDate, f.Rank, f.Feature, f.Lever, f.ImportancePct})
	}
	if err := r.wh.WriteTruncate(ctx, r.views.Importance, columns, rows); err != nil {
		return fmt.Errorf("write %s: %w", r.views.Importance, err)
	}
	return nil
}

func (r *Runner) writePredictions(ctx context.Context, result *Result) error {
	columns := []string{"run_id", "run_date", "weeks_ahead", "predicted_mrr", "weekly_trend", "change_pct"}
	rows := make([][]any, 0, len(result.Points))
	for _, p := range result.Points {
		rows = append(rows, []any{result.RunID, result.RunDate, p.WeeksAhead, p.PredictedMRR, p.WeeklyTrend, p.ChangePct})
	}
	if err := r.wh.WriteTruncate(ctx, r.views.Predictions, columns, rows); err != nil {
		return fmt.Errorf("write %s: %w", r.views.Predictions, err)
	}
	return nil
}
