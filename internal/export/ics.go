package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/teemow/weekplanner/internal/schedule"
)

// ProductID identifies weekplanner in exported calendars.
const ProductID = "-//weekplanner//EN"

// uidNamespace derives stable UIDs for events the remote store sent without
// an id.
var uidNamespace = uuid.MustParse("6f1c3d52-6a39-4f5e-9d1b-1f7b6f3c2a10")

// WriteICS encodes view as an iCalendar stream. Times are written in UTC;
// now is used for DTSTAMP.
func WriteICS(w io.Writer, view schedule.WeekView, now time.Time) error {
	cal, err := NewCalendar(view.Events, now)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode event to iCal format: %w", err)
	}
	return nil
}

// NewCalendar builds a VCALENDAR holding one VEVENT per event.
func NewCalendar(events []schedule.CalendarEvent, now time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)

	for _, e := range events {
		ve, err := toVEvent(e, now)
		if err != nil {
			return nil, err
		}
		cal.Children = append(cal.Children, ve)
	}
	return cal, nil
}

func toVEvent(e schedule.CalendarEvent, now time.Time) (*ical.Component, error) {
	start, err := e.Start.Time()
	if err != nil {
		return nil, fmt.Errorf("event %q has an invalid start: %w", e.Subject, err)
	}
	end, err := e.End.Time()
	if err != nil {
		return nil, fmt.Errorf("event %q has an invalid end: %w", e.Subject, err)
	}

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, eventUID(e))
	ve.Props.SetText(ical.PropSummary, e.Subject)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())

	if e.Body != nil && e.Body.Content != "" {
		ve.Props.SetText(ical.PropDescription, e.Body.Content)
	}
	if e.WebLink != "" {
		ve.Props.SetText(ical.PropURL, e.WebLink)
	}
	if e.Organizer != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", e.Organizer))
		ve.Props.Add(p)
	}
	for _, a := range e.Attendees {
		p := ical.NewProp(ical.PropAttendee)
		p.SetText(fmt.Sprintf("mailto:%s", a.Email))
		if a.Role == schedule.AttendeeOptional {
			p.Params.Set(ical.ParamRole, "OPT-PARTICIPANT")
		} else {
			p.Params.Set(ical.ParamRole, "REQ-PARTICIPANT")
		}
		if a.DisplayName != "" {
			p.Params.Set(ical.ParamCommonName, a.DisplayName)
		}
		ve.Props.Add(p)
	}
	return ve, nil
}

func eventUID(e schedule.CalendarEvent) string {
	if e.ID != "" {
		return e.ID
	}
	return uuid.NewSHA1(uidNamespace, []byte(e.Subject+"|"+e.Start.String())).String()
}
