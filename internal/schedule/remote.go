package schedule

import (
	"context"
)

// Remote operation names, used in errors, logs and metrics.
const (
	OpCalendarView     = "calendar_view"
	OpGetSchedule      = "get_schedule"
	OpCreateEvent      = "create_event"
	OpFindMeetingTimes = "find_meeting_times"
)

// ViewQuery selects the events of a calendar view.
type ViewQuery struct {
	Window   TimeWindow
	Zone     string
	PageSize int
	SortKey  string
}

// ScheduleQuery asks for the busy intervals of a set of attendees.
type ScheduleQuery struct {
	Attendees          []string
	Window             ZonedWindow
	GranularityMinutes int
	PreferredZone      string
}

// CalendarViewer reads the signed-in user's calendar view. FetchPage with an
// empty cursor is equivalent to FetchCalendarView.
type CalendarViewer interface {
	FetchCalendarView(ctx context.Context, q ViewQuery) (Page, error)
	FetchPage(ctx context.Context, q ViewQuery, cursor string) (Page, error)
}

// ScheduleQuerier reads attendee free/busy data. Implementations return one
// response per requested attendee, in request order.
type ScheduleQuerier interface {
	QueryFreeBusy(ctx context.Context, q ScheduleQuery) ([]ScheduleResponse, error)
}

// EventCreator writes a new event to the signed-in user's calendar.
type EventCreator interface {
	CreateEvent(ctx context.Context, event CalendarEvent) (CalendarEvent, error)
}

// SuggestionFinder asks the remote service for meeting time suggestions.
// Returned times are expressed in preferredZone.
type SuggestionFinder interface {
	FindMeetingTimes(ctx context.Context, req SuggestionRequest, preferredZone string) (SuggestionResult, error)
}

// Backend is a remote calendar service offering every capability the
// planner needs.
type Backend interface {
	CalendarViewer
	ScheduleQuerier
	EventCreator
	SuggestionFinder
}

// viewPager binds a ViewQuery to a CalendarViewer so CollectAll can follow
// its continuation cursors.
type viewPager struct {
	viewer CalendarViewer
	query  ViewQuery
}

func (p viewPager) FetchPage(ctx context.Context, cursor string) (Page, error) {
	return p.viewer.FetchPage(ctx, p.query, cursor)
}

// Pager returns a PageFetcher that continues q on viewer.
func Pager(viewer CalendarViewer, q ViewQuery) PageFetcher {
	return viewPager{viewer: viewer, query: q}
}
