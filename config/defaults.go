package config

import "time"

// Default guardrails and analysis constants for the warehouse MCP server.
// Values can be overridden via environment variables (see FromEnv) or
// per-call tool arguments.

const (
	// Concurrency. Dispatch is single-flight by default: one tool call at a
	// time, matching the sequential request/response model of the transport.
	DefaultMaxConcurrentRequests = 1

	// Row caps
	DefaultQueryRowLimit  = 100
	DefaultSampleRows     = 5
	DefaultReportDeals    = 3
	DefaultHistoryWeeks   = 15
	DefaultImportanceRows = 10

	// Profiler
	DefaultProfileColumnCap = 20

	// Trend forecast
	DefaultTrendWindow     = 4
	DefaultForecastHorizon = 4

	// End-of-cycle MRR target used by the forecast report and prompts.
	TargetMRR = 2_000_000
)

const (
	// Timeouts
	DefaultOperationTimeout      = 60 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second
)

// Warehouse objects written by the batch forecast job and read back by the
// forecast domain.
const (
	DefaultLeversView      = "v_model_3_levers"
	DefaultDealsView       = "v_next_best_action"
	DefaultImportanceTable = "t_forecast_feature_importance"
	DefaultPredictionTable = "t_forecast_predictions"
	DefaultFunnelView      = "v_onboarding_funnel"
	DefaultDropoffView     = "v_onboarding_dropoff"
)
