package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/weekplanner/internal/calendar"
	"github.com/teemow/weekplanner/internal/config"
	"github.com/teemow/weekplanner/internal/google"
	"github.com/teemow/weekplanner/internal/graph"
	"github.com/teemow/weekplanner/internal/instrumentation"
	"github.com/teemow/weekplanner/internal/logging"
	"github.com/teemow/weekplanner/internal/schedule"
)

// NewBackendFactory returns the factory for the backend cfg selects.
//
// The Graph backend acts for the single user whose bearer token is
// configured and has no other accounts. The Google backend reads one token
// file per account.
func NewBackendFactory(cfg *config.Config, metrics *instrumentation.Metrics, logger *slog.Logger) (BackendFactory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	adapter := logging.NewSlogAdapter(logger)

	switch cfg.Backend {
	case config.BackendGraph:
		return func(ctx context.Context, account string) (schedule.Backend, error) {
			if account != google.DefaultAccount {
				return nil, fmt.Errorf("the graph backend has no account %q, only %q", account, google.DefaultAccount)
			}
			if cfg.Graph.Token == "" {
				return nil, fmt.Errorf("no Microsoft Graph token configured")
			}
			return graph.NewStaticTokenClient(ctx, cfg.Graph.Token,
				graph.WithBaseURL(cfg.Graph.BaseURL),
				graph.WithRateLimit(cfg.Graph.RateLimit),
				graph.WithLogger(adapter),
				graph.WithMetrics(metrics),
			), nil
		}, nil

	case config.BackendGoogle:
		provider := google.NewFileTokenProvider(
			google.WithTokenDir(cfg.Google.TokenDir),
			google.WithDefaultTokenFile(cfg.Google.TokenFile),
			google.WithOAuthClient(google.OAuthClient{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
			}),
		)
		return func(ctx context.Context, account string) (schedule.Backend, error) {
			if account == google.DefaultAccount && cfg.Google.Account != "" {
				account = cfg.Google.Account
			}
			if !provider.HasTokenForAccount(account) {
				return nil, fmt.Errorf("no Google OAuth token for account %q: expected %s", account, provider.TokenFilePath(account))
			}
			return calendar.NewClientForAccountWithProvider(ctx, account, provider,
				calendar.WithCalendarID(cfg.Google.CalendarID),
				calendar.WithSuggestionStep(cfg.Scheduling.GranularityMinutes),
				calendar.WithLogger(adapter),
				calendar.WithMetrics(metrics),
			)
		}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
