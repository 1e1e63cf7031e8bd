package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/weekplanner/internal/config"
	"github.com/teemow/weekplanner/internal/instrumentation"
	"github.com/teemow/weekplanner/internal/schedule"
	"github.com/teemow/weekplanner/internal/server"
)

// openPlanner builds the planner for the --account flag. The returned
// function releases it.
func openPlanner(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*schedule.Planner, func(), error) {
	factory, err := server.NewBackendFactory(cfg, nil, logger)
	if err != nil {
		return nil, nil, err
	}
	sc, err := server.NewServerContext(ctx, cfg, factory)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create server context: %w", err)
	}
	sc.SetLogger(logger)
	sc.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrumentation.DefaultConfig().AuditLogging))

	planner, err := sc.PlannerForAccount(flags.account)
	if err != nil {
		_ = sc.Shutdown()
		return nil, nil, err
	}
	return planner, func() { _ = sc.Shutdown() }, nil
}

// parseWallClock reads a wall-clock flag value in zone and returns it in
// the canonical layout.
func parseWallClock(name, raw, zone string) (schedule.ZonedDateTime, error) {
	if raw == "" {
		return schedule.ZonedDateTime{}, fmt.Errorf("--%s is required", name)
	}
	loc, err := schedule.LoadZone(zone)
	if err != nil {
		return schedule.ZonedDateTime{}, err
	}
	t, err := schedule.ZonedDateTime{DateTime: raw, TimeZone: zone}.Time()
	if err != nil {
		return schedule.ZonedDateTime{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return schedule.NewZonedDateTime(t, loc, zone), nil
}

// parseWindow reads --start and --end.
func parseWindow(start, end, zone string) (schedule.ZonedWindow, error) {
	s, err := parseWallClock("start", start, zone)
	if err != nil {
		return schedule.ZonedWindow{}, err
	}
	e, err := parseWallClock("end", end, zone)
	if err != nil {
		return schedule.ZonedWindow{}, err
	}
	if e.DateTime <= s.DateTime {
		return schedule.ZonedWindow{}, fmt.Errorf("--end %s is not after --start %s", end, start)
	}
	return schedule.ZonedWindow{Start: s, End: e}, nil
}

// parseDate reads a YYYY-MM-DD date in loc, defaulting to today.
func parseDate(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	if raw == "" {
		return now.In(loc), nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return d, nil
}

// splitAttendees accepts comma and semicolon separated addresses.
func splitAttendees(raw string) []string {
	var out []string
	for _, a := range schedule.ParseAttendees(strings.ReplaceAll(raw, ",", schedule.AttendeeDelimiter)) {
		out = append(out, a.Email)
	}
	return out
}
