package calendar_tools

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/weekplanner/internal/export"
	"github.com/teemow/weekplanner/internal/schedule"
	"github.com/teemow/weekplanner/internal/server"
	"github.com/teemow/weekplanner/internal/tools/common"
)

const dateLayout = "2006-01-02"

// RegisterCalendarTools registers all calendar tools with the MCP server.
// calendar_schedule_meeting is left out when readOnly is set.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterWeekTools(s, sc); err != nil {
		return fmt.Errorf("failed to register week tools: %w", err)
	}
	if err := RegisterSchedulingTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}
	return nil
}

func accountOption() mcp.ToolOption {
	return mcp.WithString("account",
		mcp.Description("Account name (default: 'default'). Selects the calendar account to act for."),
	)
}

func zoneOption() mcp.ToolOption {
	return mcp.WithString("zone",
		mcp.Description("Time zone as IANA name (e.g. 'Europe/Berlin') or Windows name (e.g. 'Eastern Standard Time'). Defaults to the configured zone."),
	)
}

// zoneFromArgs returns the requested zone or the configured one.
func zoneFromArgs(args map[string]interface{}, sc *server.ServerContext) string {
	if zone := common.StringArg(args, "zone"); zone != "" {
		return zone
	}
	return sc.Config().Zone
}

// wallClockArg parses the wall-clock argument name in zone and returns it
// normalized.
func wallClockArg(args map[string]interface{}, name, zone string) (schedule.ZonedDateTime, error) {
	raw := common.StringArg(args, name)
	if raw == "" {
		return schedule.ZonedDateTime{}, fmt.Errorf("%s is required", name)
	}
	loc, err := schedule.LoadZone(zone)
	if err != nil {
		return schedule.ZonedDateTime{}, err
	}
	t, err := schedule.ZonedDateTime{DateTime: raw, TimeZone: zone}.Time()
	if err != nil {
		return schedule.ZonedDateTime{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return schedule.NewZonedDateTime(t, loc, zone), nil
}

// windowFromArgs reads the "start" and "end" arguments.
func windowFromArgs(args map[string]interface{}, zone string) (schedule.ZonedWindow, error) {
	start, err := wallClockArg(args, "start", zone)
	if err != nil {
		return schedule.ZonedWindow{}, err
	}
	end, err := wallClockArg(args, "end", zone)
	if err != nil {
		return schedule.ZonedWindow{}, err
	}
	if end.DateTime <= start.DateTime {
		return schedule.ZonedWindow{}, errors.New("end must be after start")
	}
	return schedule.ZonedWindow{Start: start, End: end}, nil
}

// durationFromArgs reads "durationMinutes"; 0 means the configured default.
func durationFromArgs(args map[string]interface{}) (time.Duration, error) {
	minutes, ok := common.NumberArg(args, "durationMinutes")
	if !ok {
		return 0, nil
	}
	if minutes <= 0 {
		return 0, fmt.Errorf("durationMinutes must be positive, got %g", minutes)
	}
	return time.Duration(minutes * float64(time.Minute)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	var b strings.Builder
	if err := export.WriteJSON(&b, v); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

// errorResult turns planner errors into tool errors the caller can act on.
func errorResult(action string, err error) *mcp.CallToolResult {
	var tzErr *schedule.UnknownTimezoneError
	switch {
	case schedule.IsNoSlot(err):
		return mcp.NewToolResultError("No free slot in the requested window. Try a wider window or a shorter meeting.")
	case errors.As(err, &tzErr):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
	}
}
