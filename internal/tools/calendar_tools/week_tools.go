package calendar_tools

import (
	"context"
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

// RegisterWeekTools registers calendar_week_view.
func RegisterWeekTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	weekViewTool := mcp.NewTool("calendar_week_view",
		mcp.WithDescription("List every event of the Sunday-to-Sunday week containing a date"),
		accountOption(),
		mcp.WithString("date",
			mcp.Description("Any date in the week, as YYYY-MM-DD (default: today in the zone)"),
		),
		zoneOption(),
		mcp.WithString("format",
			mcp.Description("Output format: json (default), table or ics"),
			mcp.Enum(export.FormatJSON, export.FormatTable, export.FormatICS),
		),
	)

	s.AddTool(weekViewTool, common.InstrumentedToolHandler("calendar_week_view", schedule.OpCalendarView, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWeekView(ctx, request, sc)
		}))

	return nil
}

func handleWeekView(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	zone := zoneFromArgs(args, sc)

	loc, err := schedule.LoadZone(zone)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	date := time.Now().In(loc)
	if raw := common.StringArg(args, "date"); raw != "" {
		date, err = time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid date %q: expected YYYY-MM-DD", raw)), nil
		}
	}

	format := common.StringArg(args, "format")
	if format == "" {
		format = export.FormatJSON
	}

	planner, err := sc.PlannerForAccount(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	view, err := planner.WeekView(ctx, date, zone)
	if err != nil {
		return errorResult("fetch the week view", err), nil
	}

	var b strings.Builder
	if err := export.Write(&b, view, format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}
