package engine

import (
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

// resolveEventTimezone picks the timezone used for limit-period boundaries
// and period-bound policies. Precedence, highest first:
//
//  1. event type's own timezone
//  2. the event-level schedule's timezone
//  3. the first host's schedule timezone
//  4. the first host's profile timezone
//  5. the booker's requested timezone
//
// Each rule applies only when the earlier ones produced nothing.
func resolveEventTimezone(et *model.EventType, eventSchedule *model.Schedule, hostSchedule *model.Schedule, hosts []model.Host, bookerTZ string) string {
	if et.TimeZone != "" {
		return et.TimeZone
	}
	if eventSchedule != nil && eventSchedule.TimeZone != "" {
		return eventSchedule.TimeZone
	}
	if hostSchedule != nil && hostSchedule.TimeZone != "" {
		return hostSchedule.TimeZone
	}
	if len(hosts) > 0 && hosts[0].User.TimeZone != "" {
		return hosts[0].User.TimeZone
	}
	return bookerTZ
}

// restrictionTimezone resolves the zone a restriction schedule is clipped
// in. When the event opts into booker timezone the request zone wins;
// otherwise the schedule must carry its own zone.
func restrictionTimezone(et *model.EventType, restriction *model.Schedule, bookerTZ string) (string, error) {
	if et.UseBookerTimezone {
		return bookerTZ, nil
	}
	if restriction.TimeZone == "" {
		return "", BadRequest("restriction schedule has no timezone and event does not use booker timezone")
	}
	return restriction.TimeZone, nil
}

func loadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &Error{Kind: KindBadRequest, Message: "invalid timezone " + name, Err: err}
	}
	return loc, nil
}
