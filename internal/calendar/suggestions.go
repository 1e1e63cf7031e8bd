package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/weekplanner/internal/schedule"
)

const (
	maxSuggestions = 20

	availabilityFree    = "free"
	availabilityBusy    = "busy"
	availabilityUnknown = "unknown"

	emptyReasonUnavailable = "AttendeesUnavailable"

	workDayStartHour = 8
	workDayEndHour   = 17
)

// FindMeetingTimes proposes meeting times inside the request's time slots.
// Candidates start every suggestion step and qualify when the share of free
// attendees reaches req.MinimumAttendeePercentage. With the "work" activity
// domain, candidates must fall on a weekday between 08:00 and 17:00 in
// preferredZone. Suggestions are ordered by confidence, then by start.
func (c *Client) FindMeetingTimes(ctx context.Context, req schedule.SuggestionRequest, preferredZone string) (result schedule.SuggestionResult, err error) {
	if len(req.Attendees) == 0 {
		return schedule.SuggestionResult{}, fmt.Errorf("at least one attendee is required")
	}
	if req.MeetingDuration <= 0 {
		return schedule.SuggestionResult{}, fmt.Errorf("meeting duration must be positive")
	}
	loc, err := schedule.LoadZone(preferredZone)
	if err != nil {
		return schedule.SuggestionResult{}, err
	}

	ctx, done := c.observe(ctx, schedule.OpFindMeetingTimes, preferredZone)
	defer func() { done(err) }()

	ids := make([]string, len(req.Attendees))
	for i, a := range req.Attendees {
		ids[i] = a.Email
	}

	minimum := req.MinimumAttendeePercentage
	if minimum <= 0 {
		minimum = schedule.DefaultMinimumAttendeePercentage
	}

	var locations []string
	if req.LocationConstraint != nil {
		for _, l := range req.LocationConstraint.Locations {
			locations = append(locations, l.DisplayName)
		}
	}

	workOnly := req.TimeConstraint.ActivityDomain == schedule.ActivityDomainWork

	type ranked struct {
		start time.Time
		schedule.MeetingSuggestion
	}
	var candidates []ranked
	for _, slot := range req.TimeConstraint.TimeSlots {
		window, err := schedule.ZonedWindow(slot).Resolve()
		if err != nil {
			return schedule.SuggestionResult{}, err
		}
		if window.Duration() < req.MeetingDuration {
			continue
		}

		busy, err := c.freeBusy(ctx, ids, window, preferredZone)
		if err != nil {
			return schedule.SuggestionResult{}, err
		}
		availability, err := attendeeBusy(ids, busy)
		if err != nil {
			return schedule.SuggestionResult{}, err
		}

		for start := window.Start; !start.Add(req.MeetingDuration).After(window.End); start = start.Add(c.granularity) {
			candidate := schedule.TimeWindow{Start: start, End: start.Add(req.MeetingDuration)}
			if workOnly && !withinWorkHours(candidate, loc) {
				continue
			}
			s, ok := suggest(candidate, availability, minimum)
			if !ok {
				continue
			}
			s.Slot = schedule.TimeSlot{
				Start: schedule.NewZonedDateTime(candidate.Start, loc, preferredZone),
				End:   schedule.NewZonedDateTime(candidate.End, loc, preferredZone),
			}
			s.Locations = locations
			if !req.ReturnSuggestionReasons {
				s.Reason = ""
			}
			candidates = append(candidates, ranked{start: candidate.Start, MeetingSuggestion: s})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].start.Before(candidates[j].start)
	})
	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}

	var suggestions []schedule.MeetingSuggestion
	for _, r := range candidates {
		suggestions = append(suggestions, r.MeetingSuggestion)
	}

	result = schedule.SuggestionResult{
		Suggestions:   suggestions,
		PreferredZone: preferredZone,
	}
	if len(suggestions) == 0 {
		result.EmptyReason = emptyReasonUnavailable
	}
	return result, nil
}

// attendeeState is the busy data of one attendee. Unknown attendees had no
// usable schedule and never count as free.
type attendeeState struct {
	email   string
	unknown bool
	busy    []schedule.TimeWindow
}

func attendeeBusy(ids []string, cals map[string]calendar.FreeBusyCalendar) ([]attendeeState, error) {
	out := make([]attendeeState, len(ids))
	for i, id := range ids {
		out[i].email = id
		cal, ok := cals[strings.ToLower(id)]
		if !ok || len(cal.Errors) > 0 {
			out[i].unknown = true
			continue
		}
		for _, p := range cal.Busy {
			start, err := time.Parse(time.RFC3339, p.Start)
			if err != nil {
				return nil, fmt.Errorf("failed to parse busy period start %q: %w", p.Start, err)
			}
			end, err := time.Parse(time.RFC3339, p.End)
			if err != nil {
				return nil, fmt.Errorf("failed to parse busy period end %q: %w", p.End, err)
			}
			out[i].busy = append(out[i].busy, schedule.TimeWindow{Start: start, End: end})
		}
	}
	return out, nil
}

func suggest(candidate schedule.TimeWindow, attendees []attendeeState, minimum float64) (schedule.MeetingSuggestion, bool) {
	s := schedule.MeetingSuggestion{
		OrganizerAvailability: availabilityUnknown,
		Attendees:             make([]schedule.AttendeeAvailability, len(attendees)),
	}

	free := 0
	for i, a := range attendees {
		state := availabilityFree
		switch {
		case a.unknown:
			state = availabilityUnknown
		case overlaps(candidate, a.busy):
			state = availabilityBusy
		default:
			free++
		}
		s.Attendees[i] = schedule.AttendeeAvailability{Email: a.email, Availability: state}
	}

	s.Confidence = float64(free) / float64(len(attendees)) * 100
	if s.Confidence < minimum {
		return schedule.MeetingSuggestion{}, false
	}
	if free == len(attendees) {
		s.Reason = "Suggested because it is one of the nearest times when all attendees are available."
	} else {
		s.Reason = fmt.Sprintf("Suggested because %d of %d attendees are available.", free, len(attendees))
	}
	return s, true
}

// withinWorkHours reports whether w lies on one weekday between
// workDayStartHour and workDayEndHour, read in loc.
func withinWorkHours(w schedule.TimeWindow, loc *time.Location) bool {
	start, end := w.Start.In(loc), w.End.In(loc)
	if start.Weekday() == time.Saturday || start.Weekday() == time.Sunday {
		return false
	}
	y, m, d := start.Date()
	open := time.Date(y, m, d, workDayStartHour, 0, 0, 0, loc)
	closing := time.Date(y, m, d, workDayEndHour, 0, 0, 0, loc)
	return !start.Before(open) && !end.After(closing)
}

func overlaps(w schedule.TimeWindow, busy []schedule.TimeWindow) bool {
	for _, b := range busy {
		if b.Start.Before(w.End) && b.End.After(w.Start) {
			return true
		}
	}
	return false
}
