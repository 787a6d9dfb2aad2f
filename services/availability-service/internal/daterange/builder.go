package daterange

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

// BuilderInput describes one host's availability sources for a request
// window. From and To are UTC instants.
type BuilderInput struct {
	Schedule model.Schedule

	// IsDefaultSchedule gates travel-schedule timezone substitution:
	// travel overrides apply only to the host's default schedule.
	IsDefaultSchedule bool
	Travel            []model.TravelSchedule

	From time.Time
	To   time.Time

	// OutOfOffice intervals are excluded from the second return value only.
	OutOfOffice []Range
}

// Build expands a schedule into concrete UTC free ranges for the window,
// returning the full set and a variant with out-of-office time removed.
//
// Date-specific overrides win over weekly recurrence for the same calendar
// date. Local rule times are resolved per-date against the effective
// timezone, so a 14:00 rule lands on the correct UTC instant on both sides
// of a DST transition.
func Build(in BuilderInput) (ranges, oooExcluded []Range, err error) {
	baseLoc, err := time.LoadLocation(in.Schedule.TimeZone)
	if err != nil {
		return nil, nil, fmt.Errorf("schedule %d: invalid timezone %q: %w", in.Schedule.ID, in.Schedule.TimeZone, err)
	}
	if !in.To.After(in.From) {
		return nil, nil, nil
	}

	weekly, overrides := splitRules(in.Schedule.Rules)

	var raw []Range
	// Walk one calendar day at a time in the schedule's zone. The walk
	// starts a day early so a rule whose local day begins before the UTC
	// window start still contributes its overlapping tail.
	day := in.From.In(baseLoc).AddDate(0, 0, -1)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, baseLoc)
	for !day.After(in.To.In(baseLoc)) {
		loc := baseLoc
		if in.IsDefaultSchedule {
			if tz, ok := travelZone(in.Travel, day); ok {
				loc = tz
			}
		}

		y, m, d := day.Date()
		rules := overrides[dateKey(y, m, d)]
		if rules == nil {
			rules = weekly[day.Weekday()]
		}
		for _, rule := range rules {
			if rule.End <= rule.Start {
				continue // explicit unavailable marker
			}
			start := localInstant(y, m, d, rule.Start, loc)
			end := localInstant(y, m, d, rule.End, loc)
			if end.After(start) {
				raw = append(raw, Range{Start: start.UTC(), End: end.UTC()})
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	ranges = Clamp(Merge(raw), in.From, in.To)
	oooExcluded = Subtract(ranges, in.OutOfOffice)
	if oooExcluded == nil && len(ranges) > 0 {
		// Fully excluded is not the same as not computed.
		oooExcluded = []Range{}
	}
	return ranges, oooExcluded, nil
}

func splitRules(rules []model.AvailabilityRule) (map[time.Weekday][]model.AvailabilityRule, map[string][]model.AvailabilityRule) {
	weekly := make(map[time.Weekday][]model.AvailabilityRule)
	overrides := make(map[string][]model.AvailabilityRule)
	for _, r := range rules {
		if r.IsOverride() {
			y, m, d := r.Date.Date()
			k := dateKey(y, m, d)
			overrides[k] = append(overrides[k], r)
			continue
		}
		for _, wd := range r.Days {
			weekly[wd] = append(weekly[wd], r)
		}
	}
	return weekly, overrides
}

func travelZone(travel []model.TravelSchedule, day time.Time) (*time.Location, bool) {
	for _, t := range travel {
		if day.Before(t.Start) || !day.Before(t.End) {
			continue
		}
		loc, err := time.LoadLocation(t.TimeZone)
		if err != nil {
			continue
		}
		return loc, true
	}
	return nil, false
}

// localInstant resolves an offset-from-midnight to a wall-clock instant.
// It deliberately builds the time from clock fields instead of adding the
// offset to midnight, which would drift across a DST transition.
func localInstant(y int, m time.Month, d int, offset time.Duration, loc *time.Location) time.Time {
	h := int(offset / time.Hour)
	min := int(offset % time.Hour / time.Minute)
	return time.Date(y, m, d, h, min, 0, 0, loc)
}

func dateKey(y int, m time.Month, d int) string {
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}
