package calendar_tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/weekplanner/internal/schedule"
	"github.com/teemow/weekplanner/internal/server"
	"github.com/teemow/weekplanner/internal/tools/common"
)

// RegisterSchedulingTools registers the slot and suggestion tools, and the
// meeting creation tool unless readOnly is set.
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	resolveSlotTool := mcp.NewTool("calendar_resolve_slot",
		mcp.WithDescription("Pick the slot a meeting would be placed in, from the attendees' free/busy data, without creating anything"),
		accountOption(),
		mcp.WithString("attendees",
			mcp.Description("Semicolon separated attendee email addresses. Only used when no tracked attendees are configured."),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Window start as wall-clock time, e.g. '2025-01-06T09:00'"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Window end as wall-clock time, e.g. '2025-01-06T17:00'"),
		),
		zoneOption(),
		mcp.WithNumber("durationMinutes",
			mcp.Description("Meeting duration in minutes (default: configured duration)"),
		),
	)

	s.AddTool(resolveSlotTool, common.InstrumentedToolHandler("calendar_resolve_slot", schedule.OpGetSchedule, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleResolveSlot(ctx, request, sc)
		}))

	findMeetingTimesTool := mcp.NewTool("calendar_find_meeting_times",
		mcp.WithDescription("Ask the calendar service for meeting time suggestions within a window"),
		accountOption(),
		mcp.WithString("attendees",
			mcp.Description("Semicolon or comma separated attendee email addresses (default: configured suggestion attendees)"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Window start as wall-clock time, e.g. '2025-01-06T09:00'"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Window end as wall-clock time, e.g. '2025-01-10T17:00'"),
		),
		zoneOption(),
		mcp.WithNumber("durationMinutes",
			mcp.Description("Meeting duration in minutes (default: configured duration)"),
		),
		mcp.WithNumber("minimumAttendeePercentage",
			mcp.Description("Share of attendees that must be free, 0-100 (default: configured, 100)"),
		),
		mcp.WithString("location",
			mcp.Description("Location hint for the suggestions"),
		),
	)

	s.AddTool(findMeetingTimesTool, common.InstrumentedToolHandler("calendar_find_meeting_times", schedule.OpFindMeetingTimes, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindMeetingTimes(ctx, request, sc)
		}))

	if !readOnly {
		scheduleMeetingTool := mcp.NewTool("calendar_schedule_meeting",
			mcp.WithDescription("Create a meeting in the first slot the attendees' free/busy data allows within a window"),
			accountOption(),
			mcp.WithString("subject",
				mcp.Required(),
				mcp.Description("Meeting subject"),
			),
			mcp.WithString("body",
				mcp.Description("Meeting description (plain text)"),
			),
			mcp.WithString("attendees",
				mcp.Description("Semicolon separated attendee email addresses to invite"),
			),
			mcp.WithString("start",
				mcp.Required(),
				mcp.Description("Window start as wall-clock time, e.g. '2025-01-06T09:00'"),
			),
			mcp.WithString("end",
				mcp.Required(),
				mcp.Description("Window end as wall-clock time, e.g. '2025-01-06T17:00'"),
			),
			zoneOption(),
			mcp.WithNumber("durationMinutes",
				mcp.Description("Meeting duration in minutes (default: configured duration)"),
			),
		)

		s.AddTool(scheduleMeetingTool, common.InstrumentedToolHandler("calendar_schedule_meeting", schedule.OpCreateEvent, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleScheduleMeeting(ctx, request, sc)
			}))
	}

	return nil
}

// meetingRequestFromArgs builds a MeetingRequest from the shared arguments
// of calendar_resolve_slot and calendar_schedule_meeting.
func meetingRequestFromArgs(args map[string]interface{}, sc *server.ServerContext) (schedule.MeetingRequest, error) {
	zone := zoneFromArgs(args, sc)
	window, err := windowFromArgs(args, zone)
	if err != nil {
		return schedule.MeetingRequest{}, err
	}
	duration, err := durationFromArgs(args)
	if err != nil {
		return schedule.MeetingRequest{}, err
	}
	return schedule.MeetingRequest{
		Subject:   common.StringArg(args, "subject"),
		Body:      common.StringArg(args, "body"),
		Attendees: common.StringArg(args, "attendees"),
		Window:    window,
		Zone:      zone,
		Duration:  duration,
	}, nil
}

func handleResolveSlot(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, err := meetingRequestFromArgs(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	planner, err := sc.PlannerForAccount(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slot, err := planner.ResolveSlot(ctx, req)
	if err != nil {
		return errorResult("resolve a slot", err), nil
	}
	return jsonResult(slot)
}

func handleScheduleMeeting(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req, err := meetingRequestFromArgs(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.Subject == "" {
		return mcp.NewToolResultError("subject is required"), nil
	}

	planner, err := sc.PlannerForAccount(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	outcome, err := planner.ScheduleMeeting(ctx, req)
	if err != nil {
		return errorResult("schedule the meeting", err), nil
	}
	return jsonResult(outcome)
}

func handleFindMeetingTimes(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	zone := zoneFromArgs(args, sc)

	window, err := windowFromArgs(args, zone)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	duration, err := durationFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	percentage, _ := common.NumberArg(args, "minimumAttendeePercentage")

	var attendees []string
	for _, a := range schedule.ParseAttendees(strings.ReplaceAll(common.StringArg(args, "attendees"), ",", ";")) {
		attendees = append(attendees, a.Email)
	}

	planner, err := sc.PlannerForAccount(common.GetAccountFromArgs(args))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := planner.FindMeetingTimes(ctx, schedule.SuggestionParams{
		Attendees:                 attendees,
		LocationHint:              common.StringArg(args, "location"),
		Window:                    schedule.TimeSlot(window),
		Duration:                  duration,
		MinimumAttendeePercentage: percentage,
		PreferredZone:             zone,
	})
	if err != nil {
		return errorResult("find meeting times", err), nil
	}
	return jsonResult(result)
}
