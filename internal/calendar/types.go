package calendar

import (
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/teemow/weekplanner/internal/schedule"
)

// toEvent converts a Google event, expressing its times in zone.
func toEvent(e *calendar.Event, loc *time.Location, zone string) schedule.CalendarEvent {
	if e == nil {
		return schedule.CalendarEvent{}
	}

	out := schedule.CalendarEvent{
		ID:      e.Id,
		Subject: e.Summary,
		Start:   toZoned(e.Start, loc, zone),
		End:     toZoned(e.End, loc, zone),
		WebLink: e.HtmlLink,
	}
	if e.Organizer != nil {
		out.Organizer = e.Organizer.Email
		if out.Organizer == "" {
			out.Organizer = e.Organizer.DisplayName
		}
	}
	if e.Description != "" {
		out.Body = &schedule.ItemBody{ContentType: schedule.ContentTypeText, Content: e.Description}
	}
	for _, a := range e.Attendees {
		role := schedule.AttendeeRequired
		if a.Optional {
			role = schedule.AttendeeOptional
		}
		out.Attendees = append(out.Attendees, schedule.Attendee{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Role:        role,
		})
	}
	return out
}

// toZoned converts a Google date-time. All-day dates become midnight.
// Unparseable values are passed through unchanged.
func toZoned(dt *calendar.EventDateTime, loc *time.Location, zone string) schedule.ZonedDateTime {
	if dt == nil {
		return schedule.ZonedDateTime{}
	}
	if dt.DateTime == "" && dt.Date != "" {
		return schedule.ZonedDateTime{DateTime: dt.Date + "T00:00:00", TimeZone: zone}
	}
	t, err := time.Parse(time.RFC3339, dt.DateTime)
	if err != nil {
		return schedule.ZonedDateTime{DateTime: dt.DateTime, TimeZone: dt.TimeZone}
	}
	return schedule.NewZonedDateTime(t, loc, zone)
}

func toBusyInterval(p *calendar.TimePeriod, loc *time.Location, zone string) (schedule.BusyInterval, error) {
	start, err := time.Parse(time.RFC3339, p.Start)
	if err != nil {
		return schedule.BusyInterval{}, fmt.Errorf("failed to parse busy period start %q: %w", p.Start, err)
	}
	end, err := time.Parse(time.RFC3339, p.End)
	if err != nil {
		return schedule.BusyInterval{}, fmt.Errorf("failed to parse busy period end %q: %w", p.End, err)
	}
	return schedule.BusyInterval{
		Status: "busy",
		Start:  schedule.NewZonedDateTime(start, loc, zone),
		End:    schedule.NewZonedDateTime(end, loc, zone),
	}, nil
}

// fromEvent builds the Google event to insert. Wall-clock times are resolved
// in their own zones and sent as RFC 3339 with the IANA zone attached.
func fromEvent(e schedule.CalendarEvent) (*calendar.Event, error) {
	start, err := e.Start.Time()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event start: %w", err)
	}
	end, err := e.End.Time()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event end: %w", err)
	}

	out := &calendar.Event{
		Summary: e.Subject,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: schedule.IANAName(e.Start.TimeZone),
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: schedule.IANAName(e.End.TimeZone),
		},
	}
	if e.Body != nil {
		out.Description = e.Body.Content
	}
	for _, a := range e.Attendees {
		out.Attendees = append(out.Attendees, &calendar.EventAttendee{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Optional:    a.Role == schedule.AttendeeOptional,
		})
	}
	return out, nil
}
