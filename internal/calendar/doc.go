// Package calendar implements schedule.Backend on the Google Calendar API.
//
// Calendar views are read with events.list (recurring events expanded),
// attendee availability with freebusy.query and new events are inserted with
// invitations sent to every attendee. Google has no meeting-suggestion
// endpoint, so FindMeetingTimes scans the requested window locally against
// free/busy data.
//
// Example usage:
//
//	provider := google.NewFileTokenProvider()
//	client, err := calendar.NewClientForAccountWithProvider(ctx, "work", provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	planner := schedule.NewPlanner(client, schedule.PlannerConfig{})
package calendar
