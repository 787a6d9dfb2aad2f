package fairness

import "time"

// Window is the horizon used to decide whether a round-robin event should
// widen its host pool: qualified hosts get first claim on the next two
// weeks, after that booker experience wins.
const Window = 14 * 24 * time.Hour

// NeedsFallback reports whether the fallback host pool should replace the
// qualified-only pool. earliest is the start of the first aggregated
// bookable range computed from qualified hosts, nil when they have none.
//
// A slot landing exactly on the two-week mark counts as in-window.
func NeedsFallback(now time.Time, earliest *time.Time) bool {
	if earliest == nil {
		return true
	}
	return earliest.After(now.Add(Window))
}
