package schedule

import (
	"strings"
)

// AttendeeDelimiter separates addresses in a raw attendee list.
const AttendeeDelimiter = ";"

// ParseAttendees splits a raw attendee list on AttendeeDelimiter and returns
// one required attendee per non-empty entry, in input order. Addresses are
// not validated; the remote store rejects malformed ones.
func ParseAttendees(raw string) []Attendee {
	if raw == "" {
		return nil
	}

	var attendees []Attendee
	for _, token := range strings.Split(raw, AttendeeDelimiter) {
		email := strings.TrimSpace(token)
		if email == "" {
			continue
		}
		attendees = append(attendees, Attendee{
			Email: email,
			Role:  AttendeeRequired,
		})
	}
	return attendees
}

// BuildCreateRequest assembles the event to submit for a resolved slot. The
// body is attached as plain text when non-empty, and the attendees parsed
// from attendeesRaw are always attached to the returned event.
func BuildCreateRequest(subject string, slot SlotCandidate, zone, body, attendeesRaw string) CalendarEvent {
	event := CalendarEvent{
		Subject: subject,
		Start: ZonedDateTime{
			DateTime: slot.Start.DateTime,
			TimeZone: zone,
		},
		End: ZonedDateTime{
			DateTime: slot.End.DateTime,
			TimeZone: zone,
		},
		Attendees: ParseAttendees(attendeesRaw),
	}

	if body != "" {
		event.Body = &ItemBody{
			ContentType: ContentTypeText,
			Content:     body,
		}
	}

	return event
}
