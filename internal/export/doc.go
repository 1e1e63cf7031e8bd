// Package export renders a week view as a text table, JSON or iCalendar.
package export
