package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/revenueops/warehouse-mcp/config"
	"github.com/revenueops/warehouse-mcp/internal/domains"
	"github.com/revenueops/warehouse-mcp/internal/domains/analysis"
	"github.com/revenueops/warehouse-mcp/internal/domains/forecast"
	"github.com/revenueops/warehouse-mcp/internal/domains/onboarding"
	"github.com/revenueops/warehouse-mcp/internal/mailer"
	"github.com/revenueops/warehouse-mcp/internal/registry"
	"github.com/revenueops/warehouse-mcp/internal/runtime"
	"github.com/revenueops/warehouse-mcp/internal/telemetry"
	"github.com/revenueops/warehouse-mcp/internal/warehouse"
	_ "github.com/revenueops/warehouse-mcp/internal/warehouse/driver"
	"github.com/revenueops/warehouse-mcp/pkg/version"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		useStdio      bool
		maxConcurrent int
	)
	flag.BoolVar(&useStdio, "stdio", false, "Run server over stdio transport")
	flag.IntVar(&maxConcurrent, "max-concurrent", config.DefaultMaxConcurrentRequests, "Max tool calls in flight")
	flag.Parse()

	logger := zlog.With().Str("service", "warehouse-mcp").Logger()
	ctx := logger.WithContext(context.Background())

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

	limits := runtime.NewLimits(maxConcurrent)
	runtimeController := runtime.NewController(limits)
	runtimeMW := runtime.NewMiddleware(runtimeController)

	toolRegistry := registry.New()
	domainFilter := registry.NewDomainFilterFromEnv(toolRegistry)

	srv := server.NewMCPServer(
		"Warehouse Analysis Server",
		version.Version(),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithHooks(telemetry.Hooks(logger)),
		server.WithToolHandlerMiddleware(runtimeMW.ToolMiddleware),
		server.WithToolFilter(func(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
			return domainFilter.FilterTools(ctx, tools)
		}),
	)

	reportMailer := mailer.New(cfg, logger)
	all := []domains.Domain{
		analysis.New(wh, cfg.Dataset, logger),
		forecast.New(wh, cfg.Dataset, reportMailer, logger),
		onboarding.New(wh, cfg.Dataset, logger),
		domains.NewPlaceholder("farming_topic_insight", "Topic-level engagement insight for farming accounts"),
		domains.NewPlaceholder("user_segmentation", "Behavioral user segmentation"),
		domains.NewPlaceholder("sybil", "Duplicate and sybil account detection"),
	}
	domains.RegisterCatalog(srv, toolRegistry, all)

	toolContextSize := toolRegistry.ModelContextSize("gpt-4o")

	logger.Info().
		Ctx(ctx).
		Str("version", version.Version()).
		Str("driver", cfg.Driver).
		Str("dataset", cfg.Dataset).
		Int("max_concurrent_requests", limits.MaxConcurrentRequests).
		Int("model_context_size", toolContextSize).
		Bool("email_enabled", cfg.EmailConfigured()).
		Bool("stdio", useStdio).
		Msg("server bootstrap configured")

	if useStdio {
		if err := server.ServeStdio(srv); err != nil {
			// Use stderr for transport errors so clients don't misinterpret output
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintln(os.Stderr, "no transport selected; use --stdio to run over stdio")
	os.Exit(2)
}
