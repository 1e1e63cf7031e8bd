package resources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/weekplanner/internal/export"
	"github.com/teemow/weekplanner/internal/server"
)

// Resource URIs.
const (
	SettingsURI    = "planner://settings"
	CurrentWeekURI = "planner://week/current"
)

// Settings is the non-secret part of the configuration a client may need to
// phrase requests: the backend, the zone and the scheduling defaults.
type Settings struct {
	Backend                   string   `json:"backend"`
	Zone                      string   `json:"zone"`
	PageSize                  int      `json:"pageSize"`
	GranularityMinutes        int      `json:"granularityMinutes"`
	MeetingDurationMinutes    int      `json:"meetingDurationMinutes"`
	TrackedAttendees          []string `json:"trackedAttendees,omitempty"`
	SuggestionAttendees       []string `json:"suggestionAttendees,omitempty"`
	MinimumAttendeePercentage float64  `json:"minimumAttendeePercentage"`
	LocationHint              string   `json:"locationHint,omitempty"`
	SlotPolicy                string   `json:"slotPolicy"`
}

// RegisterPlannerResources registers the planner resources.
func RegisterPlannerResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	settingsResource := mcp.NewResource(
		SettingsURI,
		"Planner Settings",
		mcp.WithResourceDescription("Backend, time zone and scheduling defaults the planner applies"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(settingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(ctx, request, sc)
	})

	weekResource := mcp.NewResource(
		CurrentWeekURI,
		"Current Week",
		mcp.WithResourceDescription("Events of the current week of the default account, in the configured zone"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(weekResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCurrentWeek(ctx, request, sc, time.Now())
	})

	return nil
}

func handleSettings(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()
	planner := cfg.PlannerConfig()

	return jsonContents(request.Params.URI, Settings{
		Backend:                   cfg.Backend,
		Zone:                      cfg.Zone,
		PageSize:                  planner.PageSize,
		GranularityMinutes:        planner.GranularityMinutes,
		MeetingDurationMinutes:    int(planner.MeetingDuration / time.Minute),
		TrackedAttendees:          planner.TrackedAttendees,
		SuggestionAttendees:       planner.SuggestionAttendees,
		MinimumAttendeePercentage: planner.MinimumAttendeePercentage,
		LocationHint:              planner.LocationHint,
		SlotPolicy:                cfg.Scheduling.SlotPolicy,
	})
}

func handleCurrentWeek(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext, now time.Time) ([]mcp.ResourceContents, error) {
	planner, err := sc.Planner()
	if err != nil {
		return nil, err
	}

	view, err := planner.WeekView(ctx, now, sc.Config().Zone)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the current week: %w", err)
	}
	return jsonContents(request.Params.URI, view)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	var b strings.Builder
	if err := export.WriteJSON(&b, v); err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     b.String(),
		},
	}, nil
}
