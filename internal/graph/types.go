package graph

import "github.com/teemow/weekplanner/internal/schedule"

// Wire types of the Microsoft Graph calendar API. Only the fields this
// package reads or writes are declared.

type dateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func fromZoned(z schedule.ZonedDateTime) dateTimeTimeZone {
	return dateTimeTimeZone{DateTime: z.DateTime, TimeZone: z.TimeZone}
}

func (d dateTimeTimeZone) zoned() schedule.ZonedDateTime {
	return schedule.ZonedDateTime{DateTime: d.DateTime, TimeZone: d.TimeZone}
}

type emailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type attendee struct {
	Type         string       `json:"type"`
	EmailAddress emailAddress `json:"emailAddress"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type event struct {
	ID            string           `json:"id,omitempty"`
	Subject       string           `json:"subject"`
	Body          *itemBody        `json:"body,omitempty"`
	Start         dateTimeTimeZone `json:"start"`
	End           dateTimeTimeZone `json:"end"`
	Organizer     *recipient       `json:"organizer,omitempty"`
	Attendees     []attendee       `json:"attendees,omitempty"`
	WebLink       string           `json:"webLink,omitempty"`
	TransactionID string           `json:"transactionId,omitempty"`
}

type eventCollection struct {
	Value    []event `json:"value"`
	NextLink string  `json:"@odata.nextLink,omitempty"`
}

type scheduleRequest struct {
	Schedules                []string         `json:"schedules"`
	StartTime                dateTimeTimeZone `json:"startTime"`
	EndTime                  dateTimeTimeZone `json:"endTime"`
	AvailabilityViewInterval int              `json:"availabilityViewInterval"`
}

type scheduleItem struct {
	Status string           `json:"status"`
	Start  dateTimeTimeZone `json:"start"`
	End    dateTimeTimeZone `json:"end"`
}

type freeBusyError struct {
	Message      string `json:"message"`
	ResponseCode string `json:"responseCode"`
}

type scheduleInformation struct {
	ScheduleID       string         `json:"scheduleId"`
	AvailabilityView string         `json:"availabilityView"`
	ScheduleItems    []scheduleItem `json:"scheduleItems"`
	Error            *freeBusyError `json:"error,omitempty"`
}

type scheduleResponse struct {
	Value []scheduleInformation `json:"value"`
}

type locationConstraintItem struct {
	DisplayName         string `json:"displayName"`
	ResolveAvailability bool   `json:"resolveAvailability"`
}

type locationConstraint struct {
	IsRequired      bool                     `json:"isRequired"`
	SuggestLocation bool                     `json:"suggestLocation"`
	Locations       []locationConstraintItem `json:"locations"`
}

type timeSlot struct {
	Start dateTimeTimeZone `json:"start"`
	End   dateTimeTimeZone `json:"end"`
}

type timeConstraint struct {
	ActivityDomain string     `json:"activityDomain"`
	TimeSlots      []timeSlot `json:"timeSlots"`
}

type findMeetingTimesRequest struct {
	Attendees                 []attendee          `json:"attendees"`
	LocationConstraint        *locationConstraint `json:"locationConstraint,omitempty"`
	TimeConstraint            timeConstraint      `json:"timeConstraint"`
	MeetingDuration           string              `json:"meetingDuration"`
	IsOrganizerOptional       bool                `json:"isOrganizerOptional"`
	ReturnSuggestionReasons   bool                `json:"returnSuggestionReasons"`
	MinimumAttendeePercentage float64             `json:"minimumAttendeePercentage"`
}

type attendeeAvailability struct {
	Attendee     attendee `json:"attendee"`
	Availability string   `json:"availability"`
}

type location struct {
	DisplayName string `json:"displayName"`
}

type meetingTimeSuggestion struct {
	Confidence            float64                `json:"confidence"`
	OrganizerAvailability string                 `json:"organizerAvailability"`
	SuggestionReason      string                 `json:"suggestionReason"`
	MeetingTimeSlot       timeSlot               `json:"meetingTimeSlot"`
	AttendeeAvailability  []attendeeAvailability `json:"attendeeAvailability"`
	Locations             []location             `json:"locations"`
}

type meetingTimeSuggestionsResult struct {
	MeetingTimeSuggestions []meetingTimeSuggestion `json:"meetingTimeSuggestions"`
	EmptySuggestionsReason string                  `json:"emptySuggestionsReason"`
}

func toEvent(e event) schedule.CalendarEvent {
	out := schedule.CalendarEvent{
		ID:      e.ID,
		Subject: e.Subject,
		Start:   e.Start.zoned(),
		End:     e.End.zoned(),
		WebLink: e.WebLink,
	}
	if e.Organizer != nil {
		out.Organizer = e.Organizer.EmailAddress.Address
		if out.Organizer == "" {
			out.Organizer = e.Organizer.EmailAddress.Name
		}
	}
	if e.Body != nil {
		out.Body = &schedule.ItemBody{ContentType: e.Body.ContentType, Content: e.Body.Content}
	}
	for _, a := range e.Attendees {
		out.Attendees = append(out.Attendees, schedule.Attendee{
			Email:       a.EmailAddress.Address,
			DisplayName: a.EmailAddress.Name,
			Role:        schedule.AttendeeRole(a.Type),
		})
	}
	return out
}

func fromEvent(e schedule.CalendarEvent) event {
	out := event{
		Subject: e.Subject,
		Start:   fromZoned(e.Start),
		End:     fromZoned(e.End),
	}
	if e.Body != nil {
		out.Body = &itemBody{ContentType: e.Body.ContentType, Content: e.Body.Content}
	}
	out.Attendees = fromAttendees(e.Attendees)
	return out
}

func fromAttendees(in []schedule.Attendee) []attendee {
	out := make([]attendee, 0, len(in))
	for _, a := range in {
		out = append(out, attendee{
			Type:         string(a.Role),
			EmailAddress: emailAddress{Address: a.Email, Name: a.DisplayName},
		})
	}
	return out
}

func fromSuggestionRequest(req schedule.SuggestionRequest) findMeetingTimesRequest {
	out := findMeetingTimesRequest{
		Attendees: fromAttendees(req.Attendees),
		TimeConstraint: timeConstraint{
			ActivityDomain: req.TimeConstraint.ActivityDomain,
		},
		MeetingDuration:           FormatDuration(req.MeetingDuration),
		IsOrganizerOptional:       req.IsOrganizerOptional,
		ReturnSuggestionReasons:   req.ReturnSuggestionReasons,
		MinimumAttendeePercentage: req.MinimumAttendeePercentage,
	}
	for _, s := range req.TimeConstraint.TimeSlots {
		out.TimeConstraint.TimeSlots = append(out.TimeConstraint.TimeSlots, timeSlot{
			Start: fromZoned(s.Start),
			End:   fromZoned(s.End),
		})
	}
	if lc := req.LocationConstraint; lc != nil {
		out.LocationConstraint = &locationConstraint{
			IsRequired:      lc.IsRequired,
			SuggestLocation: lc.SuggestLocation,
			Locations:       make([]locationConstraintItem, 0, len(lc.Locations)),
		}
		for _, l := range lc.Locations {
			out.LocationConstraint.Locations = append(out.LocationConstraint.Locations, locationConstraintItem{
				DisplayName:         l.DisplayName,
				ResolveAvailability: l.ResolveAvailability,
			})
		}
	}
	return out
}

func toSuggestionResult(r meetingTimeSuggestionsResult) schedule.SuggestionResult {
	out := schedule.SuggestionResult{
		Suggestions: make([]schedule.MeetingSuggestion, 0, len(r.MeetingTimeSuggestions)),
		EmptyReason: r.EmptySuggestionsReason,
	}
	for _, s := range r.MeetingTimeSuggestions {
		ms := schedule.MeetingSuggestion{
			Slot: schedule.TimeSlot{
				Start: s.MeetingTimeSlot.Start.zoned(),
				End:   s.MeetingTimeSlot.End.zoned(),
			},
			Confidence:            s.Confidence,
			OrganizerAvailability: s.OrganizerAvailability,
			Reason:                s.SuggestionReason,
		}
		for _, a := range s.AttendeeAvailability {
			ms.Attendees = append(ms.Attendees, schedule.AttendeeAvailability{
				Email:        a.Attendee.EmailAddress.Address,
				Availability: a.Availability,
			})
		}
		for _, l := range s.Locations {
			if l.DisplayName != "" {
				ms.Locations = append(ms.Locations, l.DisplayName)
			}
		}
		out.Suggestions = append(out.Suggestions, ms)
	}
	return out
}
