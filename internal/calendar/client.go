package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/weekplanner/internal/google"
	"github.com/teemow/weekplanner/internal/instrumentation"
	"github.com/teemow/weekplanner/internal/logging"
	"github.com/teemow/weekplanner/internal/schedule"
)

// DefaultCalendarID is the signed-in user's primary calendar.
const DefaultCalendarID = "primary"

var _ schedule.Backend = (*Client)(nil)

// Client wraps the Google Calendar service. It implements schedule.Backend.
type Client struct {
	svc         *calendar.Service
	account     string
	calendarID  string
	granularity time.Duration
	logger      logging.Logger
	metrics     *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithCalendarID sets the calendar events are listed from and created in.
func WithCalendarID(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.calendarID = id
		}
	}
}

// WithAccount labels the client with the account it acts for.
func WithAccount(account string) Option {
	return func(c *Client) { c.account = account }
}

// WithSuggestionStep sets the spacing of locally computed meeting suggestions.
func WithSuggestionStep(minutes int) Option {
	return func(c *Client) {
		if minutes > 0 {
			c.granularity = time.Duration(minutes) * time.Minute
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records remote operation metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccountWithProvider creates a Calendar client for account with
// tokens from provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	ts, err := provider.TokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{ForceAttemptHTTP2: false}
	}

	return NewClientFromHTTP(ctx, client, append([]Option{WithAccount(account)}, opts...)...)
}

// NewClientFromHTTP creates a Calendar client on top of an already
// authenticated HTTP client.
func NewClientFromHTTP(ctx context.Context, hc *http.Client, opts ...Option) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(hc))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	c := &Client{
		svc:         svc,
		account:     google.DefaultAccount,
		calendarID:  DefaultCalendarID,
		granularity: time.Duration(schedule.DefaultGranularityMinutes) * time.Minute,
		logger:      logging.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.Backend(instrumentation.BackendGoogle))
	return c, nil
}

// observe starts a span for op and returns the function that ends it and
// records the call.
func (c *Client) observe(ctx context.Context, op, zone string) (context.Context, func(error)) {
	ctx, span := instrumentation.StartRemoteSpan(ctx, instrumentation.BackendGoogle, op,
		instrumentation.NewSpanAttributeBuilder().WithZone(zone).WithAccount(c.account).Build()...)
	start := time.Now()
	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			c.logger.Warn("google calendar request failed",
				logging.Operation(op),
				logging.Err(err))
		}
		c.metrics.RecordRemoteOperation(ctx, instrumentation.BackendGoogle, op, status, zone, time.Since(start))
		instrumentation.EndSpan(span, err)
	}
}

// FetchCalendarView requests the first page of events in q.Window.
// Recurring events are expanded into single instances.
func (c *Client) FetchCalendarView(ctx context.Context, q schedule.ViewQuery) (schedule.Page, error) {
	return c.listEvents(ctx, q, "")
}

// FetchPage fetches the page a previous page's cursor points at.
func (c *Client) FetchPage(ctx context.Context, q schedule.ViewQuery, cursor string) (schedule.Page, error) {
	return c.listEvents(ctx, q, cursor)
}

func (c *Client) listEvents(ctx context.Context, q schedule.ViewQuery, pageToken string) (page schedule.Page, err error) {
	loc, err := schedule.LoadZone(q.Zone)
	if err != nil {
		return schedule.Page{}, err
	}

	ctx, done := c.observe(ctx, schedule.OpCalendarView, q.Zone)
	defer func() { done(err) }()

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = schedule.DefaultPageSize
	}

	call := c.svc.Events.List(c.calendarID).
		Context(ctx).
		TimeMin(q.Window.Start.UTC().Format(time.RFC3339)).
		TimeMax(q.Window.End.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(pageSize)).
		TimeZone(schedule.IANAName(q.Zone)).
		Fields("nextPageToken", "items(id,summary,organizer,start,end,htmlLink)")
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	events, err := call.Do()
	if err != nil {
		return schedule.Page{}, fmt.Errorf("failed to list events: %w", err)
	}

	page = schedule.Page{
		Events: make([]schedule.CalendarEvent, 0, len(events.Items)),
		Cursor: events.NextPageToken,
	}
	for _, e := range events.Items {
		page.Events = append(page.Events, toEvent(e, loc, q.Zone))
	}
	return page, nil
}

// QueryFreeBusy returns the busy intervals of q.Attendees, one response per
// attendee in request order. Intervals are expressed in q.PreferredZone, or
// in the window zone when none is given.
func (c *Client) QueryFreeBusy(ctx context.Context, q schedule.ScheduleQuery) (resp []schedule.ScheduleResponse, err error) {
	zone := q.PreferredZone
	if zone == "" {
		zone = q.Window.Start.TimeZone
	}
	loc, err := schedule.LoadZone(zone)
	if err != nil {
		return nil, err
	}
	window, err := q.Window.Resolve()
	if err != nil {
		return nil, err
	}

	ctx, done := c.observe(ctx, schedule.OpGetSchedule, zone)
	defer func() { done(err) }()

	busy, err := c.freeBusy(ctx, q.Attendees, window, zone)
	if err != nil {
		return nil, err
	}

	resp = make([]schedule.ScheduleResponse, 0, len(q.Attendees))
	for _, id := range q.Attendees {
		r := schedule.ScheduleResponse{Identity: id}
		cal, ok := busy[strings.ToLower(id)]
		switch {
		case !ok:
			r.Error = "no schedule returned"
		case len(cal.Errors) > 0:
			r.Error = cal.Errors[0].Reason
		}
		if ok {
			for _, p := range cal.Busy {
				interval, err := toBusyInterval(p, loc, zone)
				if err != nil {
					return nil, err
				}
				r.Items = append(r.Items, interval)
			}
		}
		resp = append(resp, r)
	}
	return resp, nil
}

// freeBusy returns the busy calendars of ids keyed by lowercased id.
func (c *Client) freeBusy(ctx context.Context, ids []string, window schedule.TimeWindow, zone string) (map[string]calendar.FreeBusyCalendar, error) {
	items := make([]*calendar.FreeBusyRequestItem, len(ids))
	for i, id := range ids {
		items[i] = &calendar.FreeBusyRequestItem{Id: id}
	}

	result, err := c.svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin:  window.Start.UTC().Format(time.RFC3339),
		TimeMax:  window.End.UTC().Format(time.RFC3339),
		TimeZone: schedule.IANAName(zone),
		Items:    items,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	byID := make(map[string]calendar.FreeBusyCalendar, len(result.Calendars))
	for id, cal := range result.Calendars {
		byID[strings.ToLower(id)] = cal
	}
	return byID, nil
}

// CreateEvent inserts e into the configured calendar and notifies attendees.
func (c *Client) CreateEvent(ctx context.Context, e schedule.CalendarEvent) (created schedule.CalendarEvent, err error) {
	loc, err := schedule.LoadZone(e.Start.TimeZone)
	if err != nil {
		return schedule.CalendarEvent{}, err
	}
	body, err := fromEvent(e)
	if err != nil {
		return schedule.CalendarEvent{}, err
	}

	ctx, done := c.observe(ctx, schedule.OpCreateEvent, e.Start.TimeZone)
	defer func() { done(err) }()

	inserted, err := c.svc.Events.Insert(c.calendarID, body).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return schedule.CalendarEvent{}, fmt.Errorf("failed to create event: %w", err)
	}
	return toEvent(inserted, loc, e.Start.TimeZone), nil
}
