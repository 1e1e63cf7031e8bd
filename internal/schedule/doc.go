// Package schedule is the calendar availability and scheduling engine.
//
// It turns a user-local date into a UTC week window, drains paged calendar
// views, derives meeting slots from remote free/busy data and builds the
// requests submitted to a remote calendar store. The remote service itself
// is reached through the CalendarViewer, ScheduleQuerier, EventCreator and
// SuggestionFinder interfaces, implemented by the graph and calendar
// packages.
//
// # Slot policies
//
// Slot derivation is pluggable. LastBusyEndHeuristic, the default, starts a
// meeting where the first attendee's last busy interval ends and ignores
// earlier gaps and other attendees. IntervalScanPolicy merges the busy
// intervals of all attendees and finds the earliest gap that fits.
//
// # Errors
//
// Failures are reported as *UnknownTimezoneError, *PageFetchError,
// *RemoteQueryError and *RemoteWriteError, or as ErrNoSlotAvailable when a
// window has no room. Nothing is retried. Context cancellation stays
// reachable through errors.Is.
package schedule
