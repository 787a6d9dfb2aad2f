package limits

import "time"

// Granularity is a calendar period unit, ordered finest to coarsest.
type Granularity int

const (
	Day Granularity = iota
	Week
	Month
	Year
)

func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	}
	return "unknown"
}

// Granularities in evaluation order. Finest first: a day-level exhaustion
// removes exactly one day of availability, so finer findings must land
// before a coarser period is examined for the same window.
var Granularities = []Granularity{Day, Week, Month, Year}

// PeriodStart truncates t to the start of its period in loc.
// Weeks start on Monday.
func PeriodStart(g Granularity, t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	y, m, d := lt.Date()
	switch g {
	case Day:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case Week:
		midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
		offset := (int(midnight.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -offset)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
	return lt
}

// PeriodEnd returns the start of the next period after start. start must
// already be a period boundary in loc.
func PeriodEnd(g Granularity, start time.Time, loc *time.Location) time.Time {
	lt := start.In(loc)
	switch g {
	case Day:
		return lt.AddDate(0, 0, 1)
	case Week:
		return lt.AddDate(0, 0, 7)
	case Month:
		return lt.AddDate(0, 1, 0)
	case Year:
		return lt.AddDate(1, 0, 0)
	}
	return lt
}
