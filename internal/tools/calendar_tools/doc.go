// Package calendar_tools exposes the week planner as MCP (Model Context
// Protocol) tools.
//
// Three tools only read: calendar_week_view lists the events of one week,
// calendar_resolve_slot picks the slot a meeting would be placed in, and
// calendar_find_meeting_times asks the backend for suggestions. The fourth,
// calendar_schedule_meeting, creates an event and is registered only when
// the server runs with writes enabled.
//
// Every tool accepts an optional "account" argument naming the calendar
// account to act for, and an optional "zone" defaulting to the configured
// zone. Wall-clock times are given as "2006-01-02T15:04" in that zone.
package calendar_tools
