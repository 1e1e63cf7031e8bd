package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teemow/weekplanner/internal/config"
	"github.com/teemow/weekplanner/internal/google"
	"github.com/teemow/weekplanner/internal/instrumentation"
	"github.com/teemow/weekplanner/internal/schedule"
)

// BackendFactory creates the remote calendar backend for an account.
type BackendFactory func(ctx context.Context, account string) (schedule.Backend, error)

// ServerContext holds the state shared by the MCP tools: configuration,
// one planner per account and the instrumentation sinks.
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	config   *config.Config
	factory  BackendFactory
	planners map[string]*schedule.Planner // Maps account name to planner
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. Planners are created
// lazily on first use of an account.
func NewServerContext(ctx context.Context, cfg *config.Config, factory BackendFactory) (*ServerContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if factory == nil {
		return nil, fmt.Errorf("backend factory cannot be nil")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		config:   cfg,
		factory:  factory,
		planners: make(map[string]*schedule.Planner),
		logger:   slog.Default(),
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the configuration the server was started with.
func (sc *ServerContext) Config() *config.Config {
	return sc.config
}

// SetLogger sets the logger handed to new planners.
func (sc *ServerContext) SetLogger(logger *slog.Logger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if logger != nil {
		sc.logger = logger
	}
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// SetMetrics sets the metrics recorder. Must be called before any planner
// is created.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger for tool calls and calendar writes.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.audit = al
}

// AuditLogger returns the audit logger, or nil.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.audit
}

// PlannerForAccount returns the planner of account, creating its backend
// on first use.
func (sc *ServerContext) PlannerForAccount(account string) (*schedule.Planner, error) {
	if account == "" {
		account = google.DefaultAccount
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil, fmt.Errorf("server is shutting down")
	}
	if p, ok := sc.planners[account]; ok {
		return p, nil
	}

	backend, err := sc.factory(sc.ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend for account %s: %w", sc.config.Backend, account, err)
	}

	p, err := sc.newPlanner(backend)
	if err != nil {
		return nil, err
	}
	sc.planners[account] = p
	return p, nil
}

// Planner returns the planner for the default account
func (sc *ServerContext) Planner() (*schedule.Planner, error) {
	return sc.PlannerForAccount(google.DefaultAccount)
}

// SetBackendForAccount installs backend for account, replacing any planner
// created before.
func (sc *ServerContext) SetBackendForAccount(account string, backend schedule.Backend) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	p, err := sc.newPlanner(backend)
	if err != nil {
		return err
	}
	sc.planners[account] = p
	return nil
}

func (sc *ServerContext) newPlanner(backend schedule.Backend) (*schedule.Planner, error) {
	policy, err := schedule.PolicyByName(sc.config.Scheduling.SlotPolicy)
	if err != nil {
		return nil, err
	}
	return schedule.NewPlanner(backend, sc.config.PlannerConfig(),
		schedule.WithBackendName(sc.config.Backend),
		schedule.WithLogger(sc.logger),
		schedule.WithMetrics(sc.metrics),
		schedule.WithAuditLogger(sc.audit),
		schedule.WithSlotPolicy(policy),
	), nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
