package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"

	"github.com/teemow/weekplanner/internal/schedule"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatICS   = "ics"
)

// Formats lists the supported output formats.
var Formats = []string{FormatTable, FormatJSON, FormatICS}

// Write renders view to w in format.
func Write(w io.Writer, view schedule.WeekView, format string) error {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return WriteTable(w, view)
	case FormatJSON:
		return WriteJSON(w, view)
	case FormatICS, "ical":
		return WriteICS(w, view, time.Now())
	default:
		return fmt.Errorf("unknown output format %q: must be one of %s", format, strings.Join(Formats, ", "))
	}
}

// WriteJSON writes view as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteTable writes one line per event with times shown in the view zone.
func WriteTable(w io.Writer, view schedule.WeekView) error {
	loc, err := schedule.LoadZone(view.Zone)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Week of %s (%s)\n\n", view.Window.Start.In(loc).Format("Mon 2 Jan 2006"), view.Zone)
	if len(view.Events) == 0 {
		_, err := fmt.Fprintln(w, "No events.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tSTART\tEND\tSUBJECT\tORGANIZER")
	for _, e := range view.Events {
		day, start := formatTableTime(e.Start, loc, "Mon 02 Jan", "15:04")
		_, end := formatTableTime(e.End, loc, "", "15:04")
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", day, start, end, e.Subject, e.Organizer)
	}
	return tw.Flush()
}

// formatTableTime falls back to the raw wall-clock text when z cannot be
// resolved.
func formatTableTime(z schedule.ZonedDateTime, loc *time.Location, dayLayout, clockLayout string) (string, string) {
	t, err := z.Time()
	if err != nil {
		return "", z.DateTime
	}
	t = t.In(loc)
	day := ""
	if dayLayout != "" {
		day = t.Format(dayLayout)
	}
	return day, t.Format(clockLayout)
}
