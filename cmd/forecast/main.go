// The forecast command runs one offline batch forecast: train the model on
// the weekly levers history and replace the importance and prediction tables.
// Intended to run on a weekly schedule ahead of the report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/revenueops/warehouse-mcp/config"
	"github.com/revenueops/warehouse-mcp/internal/job"
	"github.com/revenueops/warehouse-mcp/internal/warehouse"
	_ "github.com/revenueops/warehouse-mcp/internal/warehouse/driver"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var timeout time.Duration
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Overall job timeout")
	flag.Parse()

	logger := zlog.With().Str("service", "warehouse-mcp-forecast").Logger()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		fmt.Fprintln(os.Stderr, "invalid configuration; set WMCP_WAREHOUSE_DSN")
		os.Exit(1)
	}

	wh, err := warehouse.Open(warehouse.Config{Driver: cfg.Driver, DSN: cfg.DSN}, logger)
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Driver).Msg("warehouse connection failed")
		os.Exit(1)
	}
	defer wh.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := job.New(wh, cfg.Dataset, logger).Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("batch forecast failed")
		os.Exit(1)
	}

	fmt.Printf("run %s: %d weeks trained, top lever %s (%.1f%%), week-4 forecast $%.0f\n",
		result.RunID, result.Weeks,
		result.Features[0].Lever, result.Features[0].ImportancePct,
		result.Points[len(result.Points)-1].PredictedMRR)
}
