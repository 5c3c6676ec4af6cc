package forecast

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/revenueops/warehouse-mcp/config"
	"github.com/revenueops/warehouse-mcp/internal/warehouse"
)

// Views names the warehouse objects the report assembler reads. All names
// are fully qualified.
type Views struct {
	Levers      string
	Deals       string
	Importance  string
	Predictions string
}

// DefaultViews qualifies the default object names against a dataset.
func DefaultViews(dataset string) Views {
	return Views{
		Levers:      dataset + "." + config.DefaultLeversView,
		Deals:       dataset + "." + config.DefaultDealsView,
		Importance:  dataset + "." + config.DefaultImportanceTable,
		Predictions: dataset + "." + config.DefaultPredictionTable,
	}
}

// Feature is one ranked model feature for the report.
type Feature struct {
	Lever         string  `json:"lever"`
	Feature       string  `json:"feature"`
	ImportancePct float64 `json:"importance_pct"`
}

// Deal is one actionable deal from the next-best-action view.
type Deal struct {
	CompanyName  string  `json:"company_name"`
	MRR          float64 `json:"mrr"`
	VelocityDays float64 `json:"deal_velocity_days"`
	Region       string  `json:"region"`
}

// Assembler builds the weekly MRR report from independent warehouse queries.
// Each section issues its own query; sections missing their upstream data
// degrade to documented fallbacks instead of failing the whole report.
type Assembler struct {
	wh     warehouse.Querier
	views  Views
	window int
	log    zerolog.Logger
}

// NewAssembler constructs a report assembler over the given views.
func NewAssembler(wh warehouse.Querier, views Views, logger zerolog.Logger) *Assembler {
	return &Assembler{wh: wh, views: views, window: config.DefaultTrendWindow, log: logger}
}

// LoadSeries reads the levers view ordered by week.
func (a *Assembler) LoadSeries(ctx context.Context) ([]WeekMetrics, error) {
	rs, err := a.wh.Query(ctx, fmt.Sprintf("SELECT * FROM `%s` ORDER BY week", a.views.Levers))
	if err != nil {
		return nil, err
	}
	return SeriesFromRows(rs.Rows), nil
}

// fallbackFeatures is the documented stand-in when the importance table has
// not been populated by the batch job yet.
var fallbackFeatures = []Feature{{Lever: "Deal Close", ImportancePct: 74}}

// Features reads the ranked importance table, degrading to the fallback list
// on any failure.
func (a *Assembler) Features(ctx context.Context, limit int) []Feature {
	rs, err := a.wh.Query(ctx, fmt.Sprintf("SELECT * FROM `%s` ORDER BY rank LIMIT %d", a.views.Importance, limit))
	if err != nil {
		a.log.Warn().Err(err).Msg("feature importance unavailable; using fallback")
		return fallbackFeatures
	}
	features := make([]Feature, 0, rs.Len())
	for _, row := range rs.Rows {
		features = append(features, Feature{
			Lever:         row.Str("lever"),
			Feature:       row.Str("feature"),
			ImportancePct: row.Float("importance_pct"),
		})
	}
	if len(features) == 0 {
		return fallbackFeatures
	}
	return features
}

// Deals reads the next-best-action view split by action type, degrading to
// empty lists on any failure.
func (a *Assembler) Deals(ctx context.Context) (win, save []Deal, winTotal, saveTotal float64) {
	rs, err := a.wh.Query(ctx, fmt.Sprintf("SELECT * FROM `%s` ORDER BY priority ASC", a.views.Deals))
	if err != nil {
		a.log.Warn().Err(err).Msg("deals view unavailable; using empty lists")
		return nil, nil, 0, 0
	}
	for _, row := range rs.Rows {
		deal := Deal{
			CompanyName:  row.Str("company_name"),
			MRR:          row.Float("mrr"),
			VelocityDays: row.Float("deal_velocity_days"),
			Region:       row.Str("region"),
		}
		switch row.Str("action_type") {
		case "WIN":
			win = append(win, deal)
			winTotal += deal.MRR
		case "SAVE":
			save = append(save, deal)
			saveTotal += deal.MRR
		}
	}
	return win, save, winTotal, saveTotal
}

// TextReport builds the fixed-layout plain-text weekly report. Currency is
// K-abbreviated throughout; the JSON tools keep full precision.
func (a *Assembler) TextReport(ctx context.Context) (string, error) {
	series, err := a.LoadSeries(ctx)
	if err != nil {
		return "", err
	}
	latest, prev, ok := Latest(series)
	if !ok {
		return "", fmt.Errorf("levers view %s is empty", a.views.Levers)
	}

	wowPct := 0.0
	if prev.TotalMRR != 0 {
		wowPct = latest.MRRChange / prev.TotalMRR * 100
	}
	points := Project(series, a.window, config.DefaultForecastHorizon)
	trend := Trend(series, a.window)
	features := a.Features(ctx, config.DefaultImportanceRows)
	win, save, winTotal, saveTotal := a.Deals(ctx)

	var b strings.Builder
	b.WriteString("\n📊 WEEKLY MRR REPORT\n")
	b.WriteString("====================\n\n")

	fmt.Fprintf(&b, "1. CURRENT PERFORMANCE\n")
	fmt.Fprintf(&b, "   MRR: $%.0fK | WoW: $%+.1fK (%+.1f%%)\n", latest.TotalMRR/1000, latest.MRRChange/1000, wowPct)
	fmt.Fprintf(&b, "   Win Rate: %.0f%% | At-Risk: %.0f%% | Pipeline: %+.0f%%\n\n", latest.WinRatePct, latest.AtRiskPct, latest.PipelineGrowthPct)

	fmt.Fprintf(&b, "2. FORECAST\n   ")
	for _, p := range points {
		fmt.Fprintf(&b, "Week %d: $%.0fK  ", p.WeeksAhead, p.PredictedMRR/1000)
	}
	fmt.Fprintf(&b, "\n   Trend: $%+.1fK/week\n\n", trend/1000)

	b.WriteString("3. DRIVERS\n")
	for i, feat := range features {
		if i >= config.DefaultReportDeals {
			break
		}
		fmt.Fprintf(&b, "   %.0f%% %s\n", feat.ImportancePct, feat.Lever)
	}

	b.WriteString("\n4. FOCUS AREAS\n")
	fmt.Fprintf(&b, "   #1 Fix Win Rate (%.0f%%) → +$%.0fK potential\n", latest.WinRatePct, winTotal/1000)
	fmt.Fprintf(&b, "   #2 Save At-Risk Deals (%d deals) → $%.0fK at stake\n", latest.AtRiskDeals, saveTotal/1000)
	fmt.Fprintf(&b, "   #3 Speed Up Velocity (%.0f days) → faster wins\n", latest.PipelineVelocity)

	b.WriteString("\n5. TOP DEALS TO ACTION\n\n   🎯 DEALS TO WIN\n")
	writeDealLines(&b, win)
	b.WriteString("\n   🛡️ DEALS TO SAVE\n")
	writeDealLines(&b, save)

	return b.String(), nil
}

func writeDealLines(b *strings.Builder, deals []Deal) {
	for i, deal := range deals {
		if i >= config.DefaultReportDeals {
			break
		}
		name := deal.CompanyName
		if name == "" {
			name = "Unknown"
		}
		if len(name) > 25 {
			name = name[:25]
		}
		region := deal.Region
		if region == "" {
			region = "N/A"
		}
		fmt.Fprintf(b, "   #%d %-25s $%.0f/mo   %s\n", i+1, name, deal.MRR, region)
	}
}

// HTMLReport renders the text report sections as a minimal HTML email body.
func (a *Assembler) HTMLReport(ctx context.Context) (string, error) {
	text, err := a.TextReport(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<html><body style=\"font-family: monospace\">")
	b.WriteString("<h1>Weekly MRR Report</h1><pre>")
	b.WriteString(text)
	b.WriteString("</pre></body></html>")
	return b.String(), nil
}

// DataBlock builds the structured data section interpolated into the SCQA
// narrative prompt: current performance, forecast, feature importance,
// trailing history, and the win/save deal lists.
func (a *Assembler) DataBlock(ctx context.Context) (string, error) {
	series, err := a.LoadSeries(ctx)
	if err != nil {
		return "", err
	}
	latest, prev, ok := Latest(series)
	if !ok {
		return "", fmt.Errorf("levers view %s is empty", a.views.Levers)
	}

	wowPct := 0.0
	if prev.TotalMRR != 0 {
		wowPct = latest.MRRChange / prev.TotalMRR * 100
	}
	points := Project(series, a.window, config.DefaultForecastHorizon)
	trend := Trend(series, a.window)
	features := a.Features(ctx, config.DefaultImportanceRows)
	win, save, _, _ := a.Deals(ctx)

	history := series
	if len(history) > config.DefaultHistoryWeeks {
		history = history[len(history)-config.DefaultHistoryWeeks:]
	}

	rule := strings.Repeat("=", 80)
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nDATA (use this to generate the report)\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "TARGET: $%s end-of-cycle MRR\n\n", comma(config.TargetMRR))

	b.WriteString("CURRENT PERFORMANCE (latest week):\n")
	fmt.Fprintf(&b, "- Current MRR: $%s\n", comma(int64(latest.TotalMRR)))
	fmt.Fprintf(&b, "- Week-over-Week Change: $%+d (%+.1f%%)\n", int64(latest.MRRChange), wowPct)
	fmt.Fprintf(&b, "- Win Rate: %.0f%%\n", latest.WinRatePct)
	fmt.Fprintf(&b, "- At-Risk: %.0f%% (%d deals)\n\n", latest.AtRiskPct, latest.AtRiskDeals)

	fmt.Fprintf(&b, "%d-WEEK FORECAST (trend: $%+d/week):\n", config.DefaultForecastHorizon, int64(trend))
	for _, p := range points {
		fmt.Fprintf(&b, "- Week %d: $%.0fK\n", p.WeeksAhead, p.PredictedMRR/1000)
	}

	b.WriteString("\nFEATURE IMPORTANCE (from the boosted-trees model):\n")
	for _, feat := range features {
		fmt.Fprintf(&b, "- %s: %s = %.1f%%\n", orUnknown(feat.Lever), feat.Feature, feat.ImportancePct)
	}

	fmt.Fprintf(&b, "\nHISTORICAL TRAJECTORY (last %d weeks):\n", len(history))
	for _, h := range history {
		week := h.Week
		if week == "" {
			week = "N/A"
		} else if len(week) > 10 {
			week = week[:10]
		}
		fmt.Fprintf(&b, "- %s: $%s (change: $%+d)\n", week, comma(int64(h.TotalMRR)), int64(h.MRRChange))
	}

	fmt.Fprintf(&b, "\nDEALS TO WIN (%d deals):\n", len(win))
	writeDealBlock(&b, win)
	fmt.Fprintf(&b, "\nDEALS TO SAVE (%d deals):\n", len(save))
	writeDealBlock(&b, save)

	return b.String(), nil
}

func writeDealBlock(b *strings.Builder, deals []Deal) {
	for _, deal := range deals {
		fmt.Fprintf(b, "- %s: $%s | velocity: %.0f days | region: %s\n",
			orUnknown(deal.CompanyName), comma(int64(deal.MRR)), deal.VelocityDays, orNA(deal.Region))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// comma formats an integer with thousands separators.
func comma(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
