package schedule

import "time"

// DefaultMinimumAttendeePercentage requires every invited attendee to be
// available for a suggestion to qualify.
const DefaultMinimumAttendeePercentage = 100

// BuildSuggestionRequest assembles a find-meeting-times request: required
// attendees, an optional named location that the service must not resolve
// or replace, one business-hours time window and a fixed duration.
func BuildSuggestionRequest(attendees []string, locationHint string, window TimeSlot, duration time.Duration, minimumAttendeePercentage float64) SuggestionRequest {
	req := SuggestionRequest{
		TimeConstraint: TimeConstraint{
			ActivityDomain: ActivityDomainWork,
			TimeSlots:      []TimeSlot{window},
		},
		MeetingDuration:           duration,
		IsOrganizerOptional:       false,
		ReturnSuggestionReasons:   true,
		MinimumAttendeePercentage: minimumAttendeePercentage,
	}

	for _, email := range attendees {
		if email == "" {
			continue
		}
		req.Attendees = append(req.Attendees, Attendee{
			Email: email,
			Role:  AttendeeRequired,
		})
	}

	if locationHint != "" {
		req.LocationConstraint = &LocationConstraint{
			IsRequired:      false,
			SuggestLocation: false,
			Locations: []LocationConstraintItem{
				{DisplayName: locationHint, ResolveAvailability: false},
			},
		}
	}

	return req
}
