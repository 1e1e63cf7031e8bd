package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSuggestionRequest(t *testing.T) {
	window := TimeSlot{
		Start: ZonedDateTime{DateTime: "2024-05-06T09:00:00", TimeZone: "Pacific Standard Time"},
		End:   ZonedDateTime{DateTime: "2024-05-10T17:00:00", TimeZone: "Pacific Standard Time"},
	}

	req := BuildSuggestionRequest([]string{"a@example.com", "", "b@example.com"}, "Room 4", window, 90*time.Minute, 50)

	assert.Equal(t, []Attendee{
		{Email: "a@example.com", Role: AttendeeRequired},
		{Email: "b@example.com", Role: AttendeeRequired},
	}, req.Attendees)
	assert.Equal(t, ActivityDomainWork, req.TimeConstraint.ActivityDomain)
	assert.Equal(t, []TimeSlot{window}, req.TimeConstraint.TimeSlots)
	assert.Equal(t, 90*time.Minute, req.MeetingDuration)
	assert.False(t, req.IsOrganizerOptional)
	assert.True(t, req.ReturnSuggestionReasons)
	assert.Equal(t, 50.0, req.MinimumAttendeePercentage)

	require.NotNil(t, req.LocationConstraint)
	assert.False(t, req.LocationConstraint.IsRequired)
	assert.False(t, req.LocationConstraint.SuggestLocation)
	assert.Equal(t, []LocationConstraintItem{{DisplayName: "Room 4"}}, req.LocationConstraint.Locations)
}

func TestBuildSuggestionRequest_NoLocation(t *testing.T) {
	req := BuildSuggestionRequest(nil, "", TimeSlot{}, time.Hour, DefaultMinimumAttendeePercentage)
	assert.Nil(t, req.LocationConstraint)
	assert.Empty(t, req.Attendees)
}
