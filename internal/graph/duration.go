package graph

import (
	"strconv"
	"strings"
	"time"
)

// FormatDuration renders d as an ISO-8601 duration, the form Graph expects
// for meetingDuration: PT1H, PT30M, PT1H30M, PT45S. Sub-second precision is
// dropped and non-positive durations render as PT0S.
func FormatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d <= 0 {
		return "PT0S"
	}

	var b strings.Builder
	b.WriteString("PT")

	if h := d / time.Hour; h > 0 {
		b.WriteString(strconv.FormatInt(int64(h), 10))
		b.WriteByte('H')
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		b.WriteString(strconv.FormatInt(int64(m), 10))
		b.WriteByte('M')
		d -= m * time.Minute
	}
	if s := d / time.Second; s > 0 {
		b.WriteString(strconv.FormatInt(int64(s), 10))
		b.WriteByte('S')
	}
	return b.String()
}
