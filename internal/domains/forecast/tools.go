package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/revenueops/warehouse-mcp/config"
	"github.com/revenueops/warehouse-mcp/internal/mailer"
	"github.com/revenueops/warehouse-mcp/internal/registry"
	"github.com/revenueops/warehouse-mcp/internal/warehouse"
	"github.com/revenueops/warehouse-mcp/pkg/toolresp"
)

// Domain bundles the forecasting tools around the report assembler and an
// optional mail sender.
type Domain struct {
	wh    warehouse.Querier
	views Views
	asm   *Assembler
	mail  mailer.Sender
	log   zerolog.Logger
}

// New constructs the forecast domain over the default views of dataset.
// mail may be nil; send_email then degrades to a warning.
func New(wh warehouse.Querier, dataset string, mail mailer.Sender, logger zerolog.Logger) *Domain {
	log := logger.With().Str("domain", "mrr_forecast").Logger()
	views := DefaultViews(dataset)
	return &Domain{
		wh:    wh,
		views: views,
		asm:   NewAssembler(wh, views, log),
		mail:  mail,
		log:   log,
	}
}

func (d *Domain) Name() string { return "mrr_forecast" }

func (d *Domain) Description() string {
	return "MRR trend forecasting, driver analysis, and the weekly revenue report"
}

func (d *Domain) Status() string { return "active" }

// Register adds the domain's tools, resources, and prompts.
func (d *Domain) Register(s *server.MCPServer, reg *registry.Registry) {
	trend := mcp.NewTool(
		"forecast_trend",
		mcp.WithDescription("Project MRR forward using the recent weekly trend. Returns structured JSON."),
		mcp.WithNumber("weeks", mcp.DefaultNumber(config.DefaultForecastHorizon), mcp.Min(1), mcp.Description("Weeks to project forward")),
	)
	s.AddTool(trend, mcp.NewTypedToolHandler(d.handleTrend))
	reg.Register(d.Name(), trend)

	report := mcp.NewTool(
		"forecast_report",
		mcp.WithDescription("Generate the consolidated weekly MRR report (plain text). Optionally email it."),
		mcp.WithBoolean("send_email", mcp.Description("Also deliver the report to the configured recipient")),
	)
	s.AddTool(report, mcp.NewTypedToolHandler(d.handleReport))
	reg.Register(d.Name(), report)

	narrative := mcp.NewTool(
		"forecast_mrr",
		mcp.WithDescription("Return the SCQA analyst prompt plus current warehouse data, ready for narration."),
	)
	s.AddTool(narrative, mcp.NewTypedToolHandler(d.handleNarrative))
	reg.Register(d.Name(), narrative)

	d.registerResources(s)
	d.registerPrompts(s)
}

// --- forecast_trend ---

// TrendInput defines parameters for the JSON trend projection.
type TrendInput struct {
	Weeks int `json:"weeks,omitempty"`
}

type trendOutput struct {
	Success     bool    `json:"success"`
	CurrentMRR  float64 `json:"current_mrr"`
	CurrentWeek string  `json:"current_week"`
	WeeklyTrend float64 `json:"weekly_trend"`
	Window      int     `json:"trend_window_weeks"`
	Forecast    []Point `json:"forecast"`
}

func (d *Domain) handleTrend(ctx context.Context, req mcp.CallToolRequest, in TrendInput) (*mcp.CallToolResult, error) {
	horizon := in.Weeks
	if horizon <= 0 {
		horizon = config.DefaultForecastHorizon
	}
	series, err := d.asm.LoadSeries(ctx)
	if err != nil {
		return toolresp.Upstream(err), nil
	}
	latest, _, ok := Latest(series)
	if !ok {
		return toolresp.Errorf(toolresp.KindNotFound, "levers view %s is empty", d.views.Levers), nil
	}
	return toolresp.JSON(trendOutput{
		Success:     true,
		CurrentMRR:  latest.TotalMRR,
		CurrentWeek: latest.Week,
		WeeklyTrend: Trend(series, config.DefaultTrendWindow),
		Window:      config.DefaultTrendWindow,
		Forecast:    Project(series, config.DefaultTrendWindow, horizon),
	}), nil
}

// --- forecast_report ---

// ReportInput defines parameters for the consolidated weekly report.
type ReportInput struct {
	SendEmail bool `json:"send_email,omitempty"`
}

func (d *Domain) handleReport(ctx context.Context, req mcp.CallToolRequest, in ReportInput) (*mcp.CallToolResult, error) {
	text, err := d.asm.TextReport(ctx)
	if err != nil {
		return toolresp.Upstream(err), nil
	}
	if in.SendEmail {
		text += "\n" + d.deliver(ctx)
	}
	return toolresp.Text(text), nil
}

// deliver emails the HTML rendering and returns a one-line status for the
// report footer. Failures degrade to a warning line.
func (d *Domain) deliver(ctx context.Context) string {
	if d.mail == nil || !d.mail.Configured() {
		return "⚠️ Email not sent: SMTP credentials are not configured"
	}
	html, err := d.asm.HTMLReport(ctx)
	if err != nil {
		return fmt.Sprintf("⚠️ Email not sent: %v", err)
	}
	subject := fmt.Sprintf("Weekly MRR Report - %s", time.Now().Format("2006-01-02"))
	if err := d.mail.Send(ctx, subject, html); err != nil {
		d.log.Warn().Err(err).Msg("report email failed")
		return fmt.Sprintf("⚠️ Email not sent: %v", err)
	}
	return "📧 Report emailed"
}

// --- forecast_mrr ---

// NarrativeInput is empty; the tool takes no arguments.
type NarrativeInput struct{}

func (d *Domain) handleNarrative(ctx context.Context, req mcp.CallToolRequest, in NarrativeInput) (*mcp.CallToolResult, error) {
	data, err := d.asm.DataBlock(ctx)
	if err != nil {
		return toolresp.Upstream(err), nil
	}
	return toolresp.Text(scqaTemplate + data), nil
}
