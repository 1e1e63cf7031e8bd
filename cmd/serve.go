package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/weekplanner/internal/config"
	"github.com/teemow/weekplanner/internal/instrumentation"
	"github.com/teemow/weekplanner/internal/resources"
	"github.com/teemow/weekplanner/internal/server"
	"github.com/teemow/weekplanner/internal/tools/calendar_tools"
)

const transportStdio = "stdio"

// serveOptions holds the serve flags that are not part of the config file.
type serveOptions struct {
	transport      string
	httpAddr       string
	yolo           bool
	metricsEnabled bool
	metricsAddr    string
	rateLimit      float64
	rateBurst      int
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide week view and
meeting scheduling tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport
  - sse: Server-Sent Events transport

Safety Mode:
  By default, the server operates in read-only mode and never creates events.
  Use --yolo to enable calendar_schedule_meeting.

Metrics:
  With an HTTP transport, Prometheus metrics are served on --metrics-addr
  together with /healthz and /readyz. Instrumentation is configured through
  INSTRUMENTATION_ENABLED, METRICS_EXPORTER, TRACING_EXPORTER and
  OTEL_EXPORTER_OTLP_ENDPOINT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyServeFlags(cmd, cfg, &opts)
			return runServe(cfg, logger, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "", "Transport type: stdio, streamable-http or sse (default: from config, stdio)")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", "", "HTTP server address for HTTP transports (default: from config, :8080)")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (calendar_schedule_meeting)")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Metrics server address (default: from config, :9090)")
	cmd.Flags().Float64Var(&opts.rateLimit, "rate-limit", 0, "Maximum MCP requests per second over HTTP, 0 for unlimited")
	cmd.Flags().IntVar(&opts.rateBurst, "rate-burst", 0, "Burst size for --rate-limit")

	return cmd
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config, opts *serveOptions) {
	if cmd.Flags().Changed("transport") {
		cfg.Server.Transport = opts.transport
	}
	if cmd.Flags().Changed("http-addr") {
		cfg.Server.HTTPAddr = opts.httpAddr
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Server.MetricsAddr = opts.metricsAddr
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = transportStdio
	}
}

func runServe(cfg *config.Config, logger *slog.Logger, opts serveOptions) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	transport := cfg.Server.Transport
	switch transport {
	case transportStdio, server.TransportStreamableHTTP, server.TransportSSE:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http, sse)", transport)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("instrumentation shutdown failed", slog.String("error", err.Error()))
		}
	}()

	factory, err := server.NewBackendFactory(cfg, provider.Metrics(), logger)
	if err != nil {
		return err
	}
	serverContext, err := server.NewServerContext(shutdownCtx, cfg, factory)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	serverContext.SetLogger(logger)
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	health := server.NewHealthChecker(serverContext, version)

	// The metrics server is only useful next to an HTTP transport.
	if transport != transportStdio && opts.metricsEnabled && provider.MetricsHandler() != nil {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.Server.MetricsAddr,
			InstrumentationProvider: provider,
			Health:                  health,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", slog.String("error", err.Error()))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(ctx)
		}()
		logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
	}

	mcpSrv := mcpserver.NewMCPServer("weekplanner", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	readOnly := !opts.yolo
	if readOnly {
		logger.Info("starting server in read-only mode (use --yolo to enable write operations)")
	} else {
		logger.Info("starting server with write operations enabled")
	}

	if err := calendar_tools.RegisterCalendarTools(mcpSrv, serverContext, readOnly); err != nil {
		return fmt.Errorf("failed to register calendar tools: %w", err)
	}
	if err := resources.RegisterPlannerResources(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}

	if transport == transportStdio {
		return runStdioServer(mcpSrv)
	}

	httpServer, err := server.NewHTTPServer(mcpSrv, server.HTTPServerConfig{
		Transport: transport,
		RateLimit: opts.rateLimit,
		Burst:     opts.rateBurst,
		Health:    health,
		Metrics:   serverContext.Metrics(),
	})
	if err != nil {
		return err
	}
	return runHTTPServer(shutdownCtx, httpServer, cfg.Server.HTTPAddr, health, logger)
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, httpServer *server.HTTPServer, addr string, health *server.HealthChecker, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	logger.Info("MCP server listening",
		slog.String("transport", httpServer.Transport()),
		slog.String("addr", addr))

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
