package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/weekplanner/internal/instrumentation"
	"github.com/teemow/weekplanner/internal/logging"
)

// DefaultMeetingDuration is used when neither the request nor the
// configuration names a duration.
const DefaultMeetingDuration = time.Hour

// PlannerConfig holds the per-user settings the planner applies to requests.
type PlannerConfig struct {
	// PageSize is the number of events per calendar view page (default: 50).
	PageSize int

	// GranularityMinutes is the free/busy interval (default: 60).
	GranularityMinutes int

	// MeetingDuration is the default meeting length (default: 1h).
	MeetingDuration time.Duration

	// TrackedAttendees are the identities whose availability decides a
	// meeting slot. When empty, the meeting's own attendees are checked.
	TrackedAttendees []string

	// SuggestionAttendees are invited to suggested meetings when the caller
	// names none. Falls back to TrackedAttendees.
	SuggestionAttendees []string

	// MinimumAttendeePercentage is the share of attendees that must be free
	// for a suggestion to qualify (default: 100).
	MinimumAttendeePercentage float64

	// LocationHint is the default location for suggestions.
	LocationHint string
}

func (c PlannerConfig) withDefaults() PlannerConfig {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.GranularityMinutes <= 0 {
		c.GranularityMinutes = DefaultGranularityMinutes
	}
	if c.MeetingDuration <= 0 {
		c.MeetingDuration = DefaultMeetingDuration
	}
	if c.MinimumAttendeePercentage <= 0 {
		c.MinimumAttendeePercentage = DefaultMinimumAttendeePercentage
	}
	return c
}

// Planner runs the request-scoped flows on top of a remote Backend: the
// week view, meeting scheduling and meeting suggestions. It holds no state
// between calls and is safe for concurrent use.
type Planner struct {
	backend     Backend
	backendName string
	resolver    *Resolver
	config      PlannerConfig
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	audit       *instrumentation.AuditLogger
	policy      SlotPolicy
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithBackendName labels logs and metrics with the backend in use.
func WithBackendName(name string) PlannerOption {
	return func(p *Planner) { p.backendName = name }
}

// WithLogger sets the planner logger.
func WithLogger(logger *slog.Logger) PlannerOption {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics records planner metrics on m.
func WithMetrics(m *instrumentation.Metrics) PlannerOption {
	return func(p *Planner) { p.metrics = m }
}

// WithAuditLogger records calendar writes on al.
func WithAuditLogger(al *instrumentation.AuditLogger) PlannerOption {
	return func(p *Planner) { p.audit = al }
}

// WithSlotPolicy replaces the default slot policy.
func WithSlotPolicy(policy SlotPolicy) PlannerOption {
	return func(p *Planner) { p.policy = policy }
}

// NewPlanner creates a Planner on top of backend.
func NewPlanner(backend Backend, config PlannerConfig, opts ...PlannerOption) *Planner {
	p := &Planner{
		backend:     backend,
		backendName: "unknown",
		config:      config.withDefaults(),
		logger:      slog.Default(),
		policy:      LastBusyEndHeuristic{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.WithBackend(p.logger, p.backendName)
	p.resolver = NewResolver(backend, WithPolicy(p.policy), WithResolverLogger(p.logger))
	return p
}

// Config returns the effective configuration.
func (p *Planner) Config() PlannerConfig {
	return p.config
}

// WeekView is the user's calendar for one week.
type WeekView struct {
	Window TimeWindow      `json:"window"`
	Zone   string          `json:"zone"`
	Events []CalendarEvent `json:"events"`
}

// WeekView returns every event of the week containing localDate in zone,
// ordered by start time.
func (p *Planner) WeekView(ctx context.Context, localDate time.Time, zone string) (WeekView, error) {
	window, err := ComputeUTCWeekWindow(localDate, zone)
	if err != nil {
		return WeekView{}, err
	}

	query := ViewQuery{
		Window:   window,
		Zone:     zone,
		PageSize: p.config.PageSize,
		SortKey:  SortByStart,
	}

	start := time.Now()
	first, err := p.backend.FetchCalendarView(ctx, query)
	if err != nil {
		return WeekView{}, &PageFetchError{Err: err}
	}

	pager := &countingPager{next: Pager(p.backend, query)}
	events, err := CollectAll(ctx, first, pager)
	if err != nil {
		p.logger.Warn("calendar view collection failed",
			logging.Operation(OpCalendarView),
			logging.Err(err))
		return WeekView{}, err
	}

	pages := pager.fetched + 1
	if p.metrics != nil {
		p.metrics.RecordPagesFetched(ctx, p.backendName, pages)
	}
	p.logger.Debug("collected week view",
		logging.Operation(OpCalendarView),
		logging.Zone(zone),
		slog.Int("pages", pages),
		slog.Int("events", len(events)),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	return WeekView{Window: window, Zone: zone, Events: events}, nil
}

type countingPager struct {
	next    PageFetcher
	fetched int
}

func (c *countingPager) FetchPage(ctx context.Context, cursor string) (Page, error) {
	page, err := c.next.FetchPage(ctx, cursor)
	if err == nil {
		c.fetched++
	}
	return page, err
}

// MeetingRequest describes a meeting to place inside a window.
type MeetingRequest struct {
	Subject string
	Body    string

	// Attendees is a semicolon separated list of addresses to invite.
	Attendees string

	// Window bounds the meeting. Its start zone is the meeting zone unless
	// Zone is set.
	Window ZonedWindow
	Zone   string

	// Duration defaults to the configured meeting duration.
	Duration time.Duration
}

func (r MeetingRequest) zone() string {
	if r.Zone != "" {
		return r.Zone
	}
	return r.Window.Start.TimeZone
}

// ScheduleOutcome is the result of a successful ScheduleMeeting call.
type ScheduleOutcome struct {
	Slot  SlotCandidate `json:"slot"`
	Event CalendarEvent `json:"event"`
}

// ResolveSlot finds a slot for req without creating anything.
func (p *Planner) ResolveSlot(ctx context.Context, req MeetingRequest) (SlotCandidate, error) {
	attendees := p.config.TrackedAttendees
	if len(attendees) == 0 {
		for _, a := range ParseAttendees(req.Attendees) {
			attendees = append(attendees, a.Email)
		}
	}
	if len(attendees) == 0 {
		return SlotCandidate{}, errors.New("no attendees to check availability for")
	}

	duration := req.Duration
	if duration <= 0 {
		duration = p.config.MeetingDuration
	}

	window := req.Window
	if req.Zone != "" {
		window.Start.TimeZone = req.Zone
		window.End.TimeZone = req.Zone
	}

	slot, err := p.resolver.ResolveSlot(ctx, attendees, window, p.config.GranularityMinutes, duration)
	p.recordResolution(ctx, err)
	return slot, err
}

func (p *Planner) recordResolution(ctx context.Context, err error) {
	if p.metrics == nil {
		return
	}
	outcome := instrumentation.SlotOutcomeResolved
	switch {
	case errors.Is(err, ErrNoSlotAvailable):
		outcome = instrumentation.SlotOutcomeNoSlot
	case err != nil:
		outcome = instrumentation.SlotOutcomeError
	}
	p.metrics.RecordSlotResolution(ctx, p.policy.Name(), outcome)
}

// ScheduleMeeting resolves a slot for req and creates the event in it.
// ErrNoSlotAvailable is returned as is, and nothing is created in that case.
// A rejected submission is reported as *RemoteWriteError.
func (p *Planner) ScheduleMeeting(ctx context.Context, req MeetingRequest) (ScheduleOutcome, error) {
	if req.Subject == "" {
		return ScheduleOutcome{}, errors.New("meeting subject is required")
	}

	slot, err := p.ResolveSlot(ctx, req)
	if err != nil {
		return ScheduleOutcome{}, err
	}

	event := BuildCreateRequest(req.Subject, slot, req.zone(), req.Body, req.Attendees)

	start := time.Now()
	created, err := p.backend.CreateEvent(ctx, event)
	p.auditWrite(ctx, event, time.Since(start), err)
	if err != nil {
		return ScheduleOutcome{}, &RemoteWriteError{Op: OpCreateEvent, Err: err}
	}

	p.logger.Info("meeting scheduled",
		logging.Operation(OpCreateEvent),
		logging.Zone(event.Start.TimeZone),
		slog.String("start", event.Start.DateTime),
		slog.Int("attendees", len(event.Attendees)))

	return ScheduleOutcome{Slot: slot, Event: created}, nil
}

func (p *Planner) auditWrite(ctx context.Context, event CalendarEvent, duration time.Duration, err error) {
	if p.audit == nil {
		return
	}
	attendees := make([]string, 0, len(event.Attendees))
	for _, a := range event.Attendees {
		attendees = append(attendees, a.Email)
	}
	record := instrumentation.NewWriteRecord(OpCreateEvent, p.backendName).
		WithSpanContext(ctx).
		WithEvent(event.Subject, event.Start.DateTime, event.Start.TimeZone, attendees)
	record.Duration = duration
	if err != nil {
		record.Fail(err)
	} else {
		record.Succeed()
	}
	p.audit.LogWrite(record)
}

// SuggestionParams describes a find-meeting-times query. Zero values fall
// back to the planner configuration.
type SuggestionParams struct {
	Attendees                 []string
	LocationHint              string
	Window                    TimeSlot
	Duration                  time.Duration
	MinimumAttendeePercentage float64

	// PreferredZone is the zone suggestions are expressed in. Defaults to
	// the zone of the window start.
	PreferredZone string
}

// FindMeetingTimes asks the backend for meeting suggestions.
func (p *Planner) FindMeetingTimes(ctx context.Context, params SuggestionParams) (SuggestionResult, error) {
	attendees := params.Attendees
	if len(attendees) == 0 {
		attendees = p.config.SuggestionAttendees
	}
	if len(attendees) == 0 {
		attendees = p.config.TrackedAttendees
	}

	percentage := params.MinimumAttendeePercentage
	if percentage == 0 {
		percentage = p.config.MinimumAttendeePercentage
	}
	if percentage < 0 || percentage > 100 {
		return SuggestionResult{}, fmt.Errorf("minimum attendee percentage must be between 0 and 100, got %g", percentage)
	}

	duration := params.Duration
	if duration <= 0 {
		duration = p.config.MeetingDuration
	}

	location := params.LocationHint
	if location == "" {
		location = p.config.LocationHint
	}

	zone := params.PreferredZone
	if zone == "" {
		zone = params.Window.Start.TimeZone
	}
	if _, err := LoadZone(zone); err != nil {
		return SuggestionResult{}, err
	}

	req := BuildSuggestionRequest(attendees, location, params.Window, duration, percentage)
	result, err := p.backend.FindMeetingTimes(ctx, req, zone)
	if err != nil {
		return SuggestionResult{}, &RemoteQueryError{Op: OpFindMeetingTimes, Err: err}
	}
	if result.PreferredZone == "" {
		result.PreferredZone = zone
	}

	p.logger.Debug("meeting suggestions received",
		logging.Operation(OpFindMeetingTimes),
		logging.Zone(zone),
		slog.Int("suggestions", len(result.Suggestions)))

	return result, nil
}
