package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/weekplanner/internal/logging"
	"github.com/teemow/weekplanner/internal/schedule"
)

var _ schedule.Backend = (*Client)(nil)

// viewFields restricts calendar view events to what the week view shows.
const viewFields = "subject,organizer,start,end"

// FetchCalendarView requests the first page of the signed-in user's
// calendar view for q.Window.
func (c *Client) FetchCalendarView(ctx context.Context, q schedule.ViewQuery) (schedule.Page, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = schedule.DefaultPageSize
	}
	sortKey := q.SortKey
	if sortKey == "" {
		sortKey = schedule.SortByStart
	}

	params := url.Values{}
	params.Set("startDateTime", q.Window.Start.UTC().Format(time.RFC3339))
	params.Set("endDateTime", q.Window.End.UTC().Format(time.RFC3339))
	params.Set("$top", strconv.Itoa(pageSize))
	params.Set("$select", viewFields)
	params.Set("$orderby", sortKey)

	return c.fetchEvents(ctx, q.Zone, c.baseURL+"/me/calendarView?"+params.Encode())
}

// FetchPage follows a continuation cursor returned with a previous page.
// Cursors are Graph next links and must point at the configured endpoint.
func (c *Client) FetchPage(ctx context.Context, q schedule.ViewQuery, cursor string) (schedule.Page, error) {
	if !strings.HasPrefix(cursor, c.baseURL+"/") {
		return schedule.Page{}, fmt.Errorf("refusing to follow next link outside %s", c.baseURL)
	}
	return c.fetchEvents(ctx, q.Zone, cursor)
}

func (c *Client) fetchEvents(ctx context.Context, zone, reqURL string) (schedule.Page, error) {
	var coll eventCollection
	if err := c.do(ctx, schedule.OpCalendarView, zone, http.MethodGet, reqURL, nil, &coll); err != nil {
		return schedule.Page{}, err
	}

	page := schedule.Page{
		Events: make([]schedule.CalendarEvent, 0, len(coll.Value)),
		Cursor: coll.NextLink,
	}
	for _, e := range coll.Value {
		page.Events = append(page.Events, toEvent(e))
	}

	c.logger.Debug("fetched calendar page",
		logging.Zone(zone),
		"events", len(page.Events),
		"has_more", page.HasMore())
	return page, nil
}

// QueryFreeBusy returns the schedules of q.Attendees, one response per
// attendee in request order.
func (c *Client) QueryFreeBusy(ctx context.Context, q schedule.ScheduleQuery) ([]schedule.ScheduleResponse, error) {
	interval := q.GranularityMinutes
	if interval <= 0 {
		interval = schedule.DefaultGranularityMinutes
	}

	req := scheduleRequest{
		Schedules:                q.Attendees,
		StartTime:                fromZoned(q.Window.Start),
		EndTime:                  fromZoned(q.Window.End),
		AvailabilityViewInterval: interval,
	}

	var resp scheduleResponse
	err := c.do(ctx, schedule.OpGetSchedule, q.PreferredZone, http.MethodPost, c.baseURL+"/me/calendar/getSchedule", req, &resp)
	if err != nil {
		return nil, err
	}
	return orderSchedules(q.Attendees, resp.Value), nil
}

func orderSchedules(requested []string, got []scheduleInformation) []schedule.ScheduleResponse {
	byID := make(map[string]scheduleInformation, len(got))
	for _, s := range got {
		byID[strings.ToLower(s.ScheduleID)] = s
	}

	out := make([]schedule.ScheduleResponse, 0, len(requested))
	for _, id := range requested {
		s, ok := byID[strings.ToLower(id)]
		if !ok {
			out = append(out, schedule.ScheduleResponse{Identity: id, Error: "no schedule returned"})
			continue
		}

		r := schedule.ScheduleResponse{Identity: id}
		if s.Error != nil {
			r.Error = s.Error.Message
		}
		for _, item := range s.ScheduleItems {
			r.Items = append(r.Items, schedule.BusyInterval{
				Status: item.Status,
				Start:  item.Start.zoned(),
				End:    item.End.zoned(),
			})
		}
		out = append(out, r)
	}
	return out
}

// CreateEvent submits event to the signed-in user's default calendar. Each
// submission carries a fresh transaction id so Graph can drop duplicates.
func (c *Client) CreateEvent(ctx context.Context, e schedule.CalendarEvent) (schedule.CalendarEvent, error) {
	body := fromEvent(e)
	body.TransactionID = uuid.NewString()

	var created event
	if err := c.do(ctx, schedule.OpCreateEvent, e.Start.TimeZone, http.MethodPost, c.baseURL+"/me/events", body, &created); err != nil {
		return schedule.CalendarEvent{}, err
	}
	return toEvent(created), nil
}

// FindMeetingTimes asks Graph for meeting suggestions expressed in preferredZone.
func (c *Client) FindMeetingTimes(ctx context.Context, req schedule.SuggestionRequest, preferredZone string) (schedule.SuggestionResult, error) {
	var resp meetingTimeSuggestionsResult
	err := c.do(ctx, schedule.OpFindMeetingTimes, preferredZone, http.MethodPost, c.baseURL+"/me/findMeetingTimes", fromSuggestionRequest(req), &resp)
	if err != nil {
		return schedule.SuggestionResult{}, err
	}

	result := toSuggestionResult(resp)
	result.PreferredZone = preferredZone
	return result, nil
}
