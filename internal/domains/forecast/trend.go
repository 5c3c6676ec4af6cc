// Package forecast implements the MRR forecasting domain: the linear trend
// projector, the weekly report assembler (plain text and SCQA prompt
// variants), and the forecast tools, resources, and prompts.
package forecast

import (
	"math"

	"github.com/revenueops/warehouse-mcp/internal/warehouse"
)

// WeekMetrics is one week of the levers view, ordered by week ascending.
// Numeric fields are zero-filled on load so missing values never reach the
// trend arithmetic.
type WeekMetrics struct {
	Week              string  `json:"week"`
	TotalMRR          float64 `json:"total_mrr"`
	MRRChange         float64 `json:"mrr_change"`
	WinRatePct        float64 `json:"win_rate_pct"`
	AtRiskPct         float64 `json:"at_risk_pct"`
	AtRiskDeals       int     `json:"at_risk_deals"`
	PipelineGrowthPct float64 `json:"pipeline_growth_pct"`
	PipelineVelocity  float64 `json:"pipeline_velocity"`
}

// SeriesFromRows converts levers-view rows into a WeekMetrics series.
func SeriesFromRows(rows []warehouse.Row) []WeekMetrics {
	series := make([]WeekMetrics, 0, len(rows))
	for _, row := range rows {
		series = append(series, WeekMetrics{
			Week:              row.Str("week"),
			TotalMRR:          row.Float("total_mrr"),
			MRRChange:         row.Float("mrr_change"),
			WinRatePct:        row.Float("win_rate_pct"),
			AtRiskPct:         row.Float("at_risk_pct"),
			AtRiskDeals:       row.Int("at_risk_deals"),
			PipelineGrowthPct: row.Float("pipeline_growth_pct"),
			PipelineVelocity:  row.Float("pipeline_velocity"),
		})
	}
	return series
}

// Point is one projected week.
type Point struct {
	WeeksAhead   int     `json:"weeks_ahead"`
	PredictedMRR float64 `json:"predicted_mrr"`
	WeeklyTrend  float64 `json:"weekly_trend"`
	ChangePct    float64 `json:"change_pct"`
}

// Trend returns the arithmetic mean of the last window week-over-week
// changes. Fewer observations than the window means the mean is taken over
// what exists; an empty series has zero trend.
func Trend(series []WeekMetrics, window int) float64 {
	if len(series) == 0 || window <= 0 {
		return 0
	}
	start := len(series) - window
	if start < 0 {
		start = 0
	}
	sum := 0.0
	n := 0
	for _, w := range series[start:] {
		delta := w.MRRChange
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			delta = 0
		}
		sum += delta
		n++
	}
	return sum / float64(n)
}

// Project extrapolates the series horizon weeks forward by repeatedly adding
// the constant window-average trend to the running value. Each point reports
// the percent change relative to the last observed value.
func Project(series []WeekMetrics, window, horizon int) []Point {
	if len(series) == 0 || horizon <= 0 {
		return nil
	}
	baseline := series[len(series)-1].TotalMRR
	trend := Trend(series, window)

	points := make([]Point, 0, horizon)
	value := baseline
	for i := 1; i <= horizon; i++ {
		value += trend
		changePct := 0.0
		if baseline != 0 {
			changePct = (value - baseline) / baseline * 100
		}
		points = append(points, Point{
			WeeksAhead:   i,
			PredictedMRR: value,
			WeeklyTrend:  trend,
			ChangePct:    changePct,
		})
	}
	return points
}

// Latest returns the last and second-to-last observations. With a single
// observation, previous equals latest so week-over-week change is zero.
func Latest(series []WeekMetrics) (latest, prev WeekMetrics, ok bool) {
	if len(series) == 0 {
		return WeekMetrics{}, WeekMetrics{}, false
	}
	latest = series[len(series)-1]
	prev = latest
	if len(series) > 1 {
		prev = series[len(series)-2]
	}
	return latest, prev, true
}
