package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/teemow/weekplanner/internal/logging"
)

// DefaultGranularityMinutes is the free/busy interval used when a caller
// does not ask for one.
const DefaultGranularityMinutes = 60

// Availability is one attendee's busy intervals resolved to instants, in the
// order the remote service reported them.
type Availability struct {
	Identity string
	Busy     []TimeWindow
}

// SlotPolicy picks the start of a meeting of the given duration inside
// window from attendee availability. It returns ErrNoSlotAvailable when the
// window has no room.
type SlotPolicy interface {
	Name() string
	SelectStart(window TimeWindow, duration time.Duration, availability []Availability) (time.Time, error)
}

// LastBusyEndHeuristic starts the meeting where the last reported busy
// interval of the first attendee ends. Earlier gaps and the other attendees
// are not considered. With no busy intervals the window start is used.
type LastBusyEndHeuristic struct{}

// Name implements SlotPolicy.
func (LastBusyEndHeuristic) Name() string { return "last-busy-end" }

// SelectStart implements SlotPolicy.
func (LastBusyEndHeuristic) SelectStart(window TimeWindow, _ time.Duration, availability []Availability) (time.Time, error) {
	if len(availability) == 0 || len(availability[0].Busy) == 0 {
		return window.Start, nil
	}

	busy := availability[0].Busy
	candidate := busy[len(busy)-1].End
	if !candidate.Before(window.End) {
		return time.Time{}, ErrNoSlotAvailable
	}
	return candidate, nil
}

// IntervalScanPolicy merges the busy intervals of every attendee and returns
// the earliest start at which the whole meeting fits inside the window
// without overlapping any of them.
type IntervalScanPolicy struct{}

// Name implements SlotPolicy.
func (IntervalScanPolicy) Name() string { return "interval-scan" }

// SelectStart implements SlotPolicy.
func (IntervalScanPolicy) SelectStart(window TimeWindow, duration time.Duration, availability []Availability) (time.Time, error) {
	busy := MergeBusy(availability)

	cursor := window.Start
	for _, b := range busy {
		if !b.End.After(cursor) {
			continue
		}
		if !b.Start.Before(cursor.Add(duration)) {
			break
		}
		cursor = b.End
	}

	if cursor.Add(duration).After(window.End) {
		return time.Time{}, ErrNoSlotAvailable
	}
	return cursor, nil
}

// MergeBusy flattens the busy intervals of all attendees into a sorted list
// of non-overlapping intervals.
func MergeBusy(availability []Availability) []TimeWindow {
	var all []TimeWindow
	for _, a := range availability {
		all = append(all, a.Busy...)
	}
	if len(all) == 0 {
		return nil
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Start.Before(all[j].Start)
	})

	merged := []TimeWindow{all[0]}
	for _, w := range all[1:] {
		last := &merged[len(merged)-1]
		if w.Start.After(last.End) {
			merged = append(merged, w)
			continue
		}
		if w.End.After(last.End) {
			last.End = w.End
		}
	}
	return merged
}

// PolicyByName returns the slot policy registered under name.
func PolicyByName(name string) (SlotPolicy, error) {
	switch name {
	case "", LastBusyEndHeuristic{}.Name():
		return LastBusyEndHeuristic{}, nil
	case IntervalScanPolicy{}.Name():
		return IntervalScanPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown slot policy %q", name)
	}
}

// Resolver derives meeting slots from remote free/busy data.
type Resolver struct {
	querier ScheduleQuerier
	policy  SlotPolicy
	logger  *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithPolicy replaces the default LastBusyEndHeuristic.
func WithPolicy(policy SlotPolicy) ResolverOption {
	return func(r *Resolver) {
		if policy != nil {
			r.policy = policy
		}
	}
}

// WithResolverLogger sets the logger used for diagnostics.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver backed by querier.
func NewResolver(querier ScheduleQuerier, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		querier: querier,
		policy:  LastBusyEndHeuristic{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the active slot policy.
func (r *Resolver) Policy() SlotPolicy {
	return r.policy
}

// ResolveSlot queries the busy intervals of attendees over window and
// derives a slot of the given duration, expressed in the zone of the
// window start. A granularity of zero or less means
// DefaultGranularityMinutes.
//
// Errors: *UnknownTimezoneError for an unresolvable window zone,
// *RemoteQueryError for a failed or malformed query, and ErrNoSlotAvailable
// when the policy finds no room.
func (r *Resolver) ResolveSlot(ctx context.Context, attendees []string, window ZonedWindow, granularityMinutes int, duration time.Duration) (SlotCandidate, error) {
	if duration <= 0 {
		return SlotCandidate{}, fmt.Errorf("meeting duration must be positive, got %s", duration)
	}

	zone := window.Start.TimeZone
	loc, err := LoadZone(zone)
	if err != nil {
		return SlotCandidate{}, err
	}
	span, err := window.Resolve()
	if err != nil {
		return SlotCandidate{}, err
	}
	if !span.Start.Before(span.End) {
		return SlotCandidate{}, fmt.Errorf("window start %s is not before end %s", window.Start, window.End)
	}

	if granularityMinutes <= 0 {
		granularityMinutes = DefaultGranularityMinutes
	}

	responses, err := r.querier.QueryFreeBusy(ctx, ScheduleQuery{
		Attendees:          attendees,
		Window:             window,
		GranularityMinutes: granularityMinutes,
		PreferredZone:      zone,
	})
	if err != nil {
		return SlotCandidate{}, &RemoteQueryError{Op: OpGetSchedule, Err: err}
	}

	availability, err := toAvailability(responses)
	if err != nil {
		return SlotCandidate{}, &RemoteQueryError{Op: OpGetSchedule, Err: err}
	}
	for _, resp := range responses {
		if resp.Error != "" {
			r.logger.Warn("schedule entry reported an error",
				logging.UserHash(resp.Identity),
				slog.String(logging.KeyError, resp.Error))
		}
	}

	start, err := r.policy.SelectStart(span, duration, availability)
	if err != nil {
		r.logger.Debug("no slot in window",
			logging.Policy(r.policy.Name()),
			slog.Time("window_start", span.Start),
			slog.Time("window_end", span.End))
		return SlotCandidate{}, err
	}

	slot := SlotCandidate{
		Start:           NewZonedDateTime(start, loc, zone),
		End:             NewZonedDateTime(start.Add(duration), loc, zone),
		DurationMinutes: int(duration / time.Minute),
	}
	return slot, nil
}

func toAvailability(responses []ScheduleResponse) ([]Availability, error) {
	availability := make([]Availability, 0, len(responses))
	for _, resp := range responses {
		a := Availability{Identity: resp.Identity}
		for _, item := range resp.Items {
			start, err := item.Start.Time()
			if err != nil {
				return nil, fmt.Errorf("malformed busy interval start for %s: %w", logging.AnonymizeEmail(resp.Identity), err)
			}
			end, err := item.End.Time()
			if err != nil {
				return nil, fmt.Errorf("malformed busy interval end for %s: %w", logging.AnonymizeEmail(resp.Identity), err)
			}
			a.Busy = append(a.Busy, TimeWindow{Start: start, End: end})
		}
		availability = append(availability, a)
	}
	return availability, nil
}
