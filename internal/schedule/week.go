package schedule

import "time"

// WeekStart is the day a calendar week begins on.
const WeekStart = time.Sunday

// Week is the length of a week window. It is an absolute duration, so a
// window spanning a DST change still covers exactly 168 hours.
const Week = 7 * 24 * time.Hour

// ComputeUTCWeekWindow returns the UTC window of the week containing
// localDate as experienced in zone. Only the calendar date of localDate is
// used; its clock and location are ignored.
func ComputeUTCWeekWindow(localDate time.Time, zone string) (TimeWindow, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return TimeWindow{}, err
	}
	return WeekWindowIn(localDate, loc), nil
}

// WeekWindowIn is ComputeUTCWeekWindow for an already resolved location.
func WeekWindowIn(localDate time.Time, loc *time.Location) TimeWindow {
	y, m, d := localDate.Date()

	offset := int(WeekStart) - int(localDate.Weekday())
	if offset > 0 {
		offset -= 7
	}

	// Build midnight as a wall-clock value in loc first, then convert.
	// Interpreting the date as UTC directly would shift the week boundary
	// by the zone offset.
	start := time.Date(y, m, d+offset, 0, 0, 0, 0, loc).UTC()

	return TimeWindow{
		Start: start,
		End:   start.Add(Week),
	}
}
