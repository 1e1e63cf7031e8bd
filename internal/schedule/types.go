package schedule

import (
	"fmt"
	"time"
)

// WallClockLayout is the layout of a ZonedDateTime timestamp. It carries no
// zone suffix; the zone travels separately in TimeZone.
const WallClockLayout = "2006-01-02T15:04:05"

// wallClockLayouts are the timestamp shapes remote services are known to send.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05.0000000",
	"2006-01-02T15:04:05.999999999",
	WallClockLayout,
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

// TimeWindow is a half-open [Start, End) range of absolute instants.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the length of the window.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// ZonedDateTime is a wall-clock timestamp paired with the zone it should be
// read in. Remote calendar services interpret the pair themselves.
type ZonedDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// NewZonedDateTime expresses t as wall-clock time in loc, labelled with zone.
func NewZonedDateTime(t time.Time, loc *time.Location, zone string) ZonedDateTime {
	return ZonedDateTime{
		DateTime: t.In(loc).Format(WallClockLayout),
		TimeZone: zone,
	}
}

// Time resolves the pair into an absolute instant.
func (z ZonedDateTime) Time() (time.Time, error) {
	loc, err := LoadZone(z.TimeZone)
	if err != nil {
		return time.Time{}, err
	}
	return parseWallClock(z.DateTime, loc)
}

// IsZero reports whether no timestamp is set.
func (z ZonedDateTime) IsZero() bool {
	return z.DateTime == ""
}

func (z ZonedDateTime) String() string {
	return z.DateTime + " (" + z.TimeZone + ")"
}

func parseWallClock(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ZonedWindow is a requested window expressed at the remote-service boundary.
type ZonedWindow struct {
	Start ZonedDateTime `json:"start"`
	End   ZonedDateTime `json:"end"`
}

// Resolve converts both ends into absolute instants.
func (w ZonedWindow) Resolve() (TimeWindow, error) {
	start, err := w.Start.Time()
	if err != nil {
		return TimeWindow{}, fmt.Errorf("failed to resolve window start: %w", err)
	}
	end, err := w.End.Time()
	if err != nil {
		return TimeWindow{}, fmt.Errorf("failed to resolve window end: %w", err)
	}
	return TimeWindow{Start: start, End: end}, nil
}

// AttendeeRole marks whether an attendee must attend.
type AttendeeRole string

const (
	AttendeeRequired AttendeeRole = "required"
	AttendeeOptional AttendeeRole = "optional"
)

// Attendee is one invitee of an event.
type Attendee struct {
	Email       string       `json:"email"`
	DisplayName string       `json:"displayName,omitempty"`
	Role        AttendeeRole `json:"role"`
}

// ContentTypeText is the body content type used for user-entered text.
const ContentTypeText = "text"

// ItemBody is the content of an event body.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// CalendarEvent is a calendar entry as read from or written to a remote store.
type CalendarEvent struct {
	ID        string        `json:"id,omitempty"`
	Subject   string        `json:"subject"`
	Organizer string        `json:"organizer,omitempty"`
	Start     ZonedDateTime `json:"start"`
	End       ZonedDateTime `json:"end"`
	Body      *ItemBody     `json:"body,omitempty"`
	Attendees []Attendee    `json:"attendees,omitempty"`
	WebLink   string        `json:"webLink,omitempty"`
}

// BusyInterval is one occupied period reported by a free/busy query.
type BusyInterval struct {
	Status string        `json:"status,omitempty"`
	Start  ZonedDateTime `json:"start"`
	End    ZonedDateTime `json:"end"`
}

// ScheduleResponse holds the busy intervals reported for one attendee.
type ScheduleResponse struct {
	Identity string         `json:"identity"`
	Items    []BusyInterval `json:"items"`
	Error    string         `json:"error,omitempty"`
}

// SlotCandidate is a proposed meeting time that has not been committed.
type SlotCandidate struct {
	Start           ZonedDateTime `json:"start"`
	End             ZonedDateTime `json:"end"`
	DurationMinutes int           `json:"durationMinutes"`
}

// TimeSlot is a zoned start/end pair used in suggestion constraints.
type TimeSlot struct {
	Start ZonedDateTime `json:"start"`
	End   ZonedDateTime `json:"end"`
}

// LocationConstraintItem names one candidate location.
type LocationConstraintItem struct {
	DisplayName         string `json:"displayName"`
	ResolveAvailability bool   `json:"resolveAvailability"`
}

// LocationConstraint restricts where a suggested meeting may take place.
type LocationConstraint struct {
	IsRequired      bool                     `json:"isRequired"`
	SuggestLocation bool                     `json:"suggestLocation"`
	Locations       []LocationConstraintItem `json:"locations"`
}

// ActivityDomainWork scopes a time constraint to business hours.
const ActivityDomainWork = "work"

// TimeConstraint restricts when a suggested meeting may take place.
type TimeConstraint struct {
	ActivityDomain string     `json:"activityDomain"`
	TimeSlots      []TimeSlot `json:"timeSlots"`
}

// SuggestionRequest asks a remote service for meeting times that satisfy
// attendee, location, time and duration constraints.
type SuggestionRequest struct {
	Attendees                 []Attendee          `json:"attendees"`
	LocationConstraint        *LocationConstraint `json:"locationConstraint,omitempty"`
	TimeConstraint            TimeConstraint      `json:"timeConstraint"`
	MeetingDuration           time.Duration       `json:"meetingDuration"`
	IsOrganizerOptional       bool                `json:"isOrganizerOptional"`
	ReturnSuggestionReasons   bool                `json:"returnSuggestionReasons"`
	MinimumAttendeePercentage float64             `json:"minimumAttendeePercentage"`
}

// AttendeeAvailability is the availability of one attendee for a suggestion.
type AttendeeAvailability struct {
	Email        string `json:"email"`
	Availability string `json:"availability"`
}

// MeetingSuggestion is one proposed meeting time.
type MeetingSuggestion struct {
	Slot                  TimeSlot               `json:"slot"`
	Confidence            float64                `json:"confidence"`
	OrganizerAvailability string                 `json:"organizerAvailability,omitempty"`
	Reason                string                 `json:"reason,omitempty"`
	Attendees             []AttendeeAvailability `json:"attendees,omitempty"`
	Locations             []string               `json:"locations,omitempty"`
}

// SuggestionResult is the answer to a SuggestionRequest.
type SuggestionResult struct {
	Suggestions   []MeetingSuggestion `json:"suggestions"`
	EmptyReason   string              `json:"emptyReason,omitempty"`
	PreferredZone string              `json:"preferredZone,omitempty"`
}
