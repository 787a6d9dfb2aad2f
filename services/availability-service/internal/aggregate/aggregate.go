package aggregate

import (
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/daterange"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

// HostAvailability is one host's computed free/busy picture for the
// request window.
type HostAvailability struct {
	User        model.User
	TimeZone    string
	Ranges      []daterange.Range
	OOOExcluded []daterange.Range
	Busy        []daterange.Range
}

// Free returns the host's bookable ranges after removing busy time.
// Out-of-office time never counts as bookable, so the OOO-excluded set
// wins when present.
func (h HostAvailability) Free() []daterange.Range {
	base := h.OOOExcluded
	if base == nil {
		base = h.Ranges
	}
	return daterange.Subtract(base, h.Busy)
}

// Merge combines per-host availability into one ordered sequence of
// bookable UTC ranges according to the event's scheduling policy:
// round-robin needs any one host free, collective needs every host free,
// and single-host events pass through unchanged.
func Merge(hosts []HostAvailability, schedulingType model.SchedulingType) []daterange.Range {
	if len(hosts) == 0 {
		return nil
	}
	if len(hosts) == 1 {
		return hosts[0].Free()
	}

	switch schedulingType {
	case model.SchedulingCollective:
		out := hosts[0].Free()
		for _, h := range hosts[1:] {
			out = daterange.Intersect(out, h.Free())
			if len(out) == 0 {
				return nil
			}
		}
		return out
	default:
		// Round-robin and dynamic events: a range is bookable when at
		// least one host is free.
		var all []daterange.Range
		for _, h := range hosts {
			all = append(all, h.Free()...)
		}
		return daterange.Merge(all)
	}
}
