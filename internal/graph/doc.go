// Package graph implements the remote calendar operations on top of the
// Microsoft Graph REST API: calendar view paging, getSchedule, event
// creation and findMeetingTimes.
//
// Requests are authenticated through an oauth2.TokenSource, optionally
// throttled with a client-side rate limiter, and never retried. Non-2xx
// responses are returned as *APIError carrying Graph's error code and message.
package graph
