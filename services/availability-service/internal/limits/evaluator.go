package limits

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

// BusyInterval is a pre-fetched booking record used for limit counting.
// The fetch window must be extended outward to the coarsest configured
// granularity so no period is ever partially evaluated.
type BusyInterval struct {
	UserID int64
	Start  time.Time
	End    time.Time
}

// Counter is the live, authoritative booking count used for year-level
// limits, where the pre-fetched snapshot would be too large to trust.
// userID 0 counts across all hosts of the event type.
type Counter interface {
	CountBookings(ctx context.Context, userID, eventTypeID int64, start, end time.Time) (int, error)
}

type Input struct {
	UserIDs     []int64
	EventTypeID int64

	Booking  model.BookingLimits
	Duration model.DurationLimits

	From     time.Time
	To       time.Time
	Location *time.Location

	Busy    []BusyInterval
	Counter Counter // may be nil; year limits then use the snapshot
}

// Evaluate runs the team/global pass followed by per-user passes and
// returns one manager per user with the global exhaustion state already
// merged in.
func Evaluate(ctx context.Context, in Input) (map[int64]*Manager, error) {
	global := NewManager()
	if err := evaluatePass(ctx, in, global, 0); err != nil {
		return nil, err
	}

	perUser := make(map[int64]*Manager, len(in.UserIDs))
	for _, uid := range in.UserIDs {
		m := NewManager()
		m.Merge(global)
		if err := evaluatePass(ctx, in, m, uid); err != nil {
			return nil, err
		}
		perUser[uid] = m
	}
	return perUser, nil
}

func evaluatePass(ctx context.Context, in Input, m *Manager, userID int64) error {
	for _, g := range Granularities {
		countLimit := bookingLimitFor(in.Booking, g)
		durLimit := durationLimitFor(in.Duration, g)
		if countLimit == 0 && durLimit == 0 {
			continue
		}

		allExhausted := true
		for ps := PeriodStart(g, in.From, in.Location); ps.Before(in.To); ps = PeriodEnd(g, ps, in.Location) {
			if m.Exhausted(g, ps) {
				continue
			}
			pe := PeriodEnd(g, ps, in.Location)

			if g == Year && countLimit > 0 && in.Counter != nil {
				n, err := in.Counter.CountBookings(ctx, userID, in.EventTypeID, ps.UTC(), pe.UTC())
				if err != nil {
					return err
				}
				if n >= countLimit {
					m.MarkExhausted(g, ps)
					continue
				}
				allExhausted = false
				continue
			}

			count := 0
			var total time.Duration
			exhausted := false
			for _, b := range in.Busy {
				if userID != 0 && b.UserID != userID {
					continue
				}
				if b.Start.Before(ps.UTC()) || !b.Start.Before(pe.UTC()) {
					continue
				}
				count++
				total += b.End.Sub(b.Start)
				if countLimit > 0 && count >= countLimit {
					exhausted = true
					break
				}
				if durLimit > 0 && total >= durLimit {
					exhausted = true
					break
				}
			}
			if exhausted {
				m.MarkExhausted(g, ps)
			} else {
				allExhausted = false
			}
		}

		// Every period of this granularity covers the window, so once all
		// of them are exhausted nothing coarser can add availability back.
		if allExhausted {
			return nil
		}
	}
	return nil
}

func bookingLimitFor(l model.BookingLimits, g Granularity) int {
	switch g {
	case Day:
		return l.PerDay
	case Week:
		return l.PerWeek
	case Month:
		return l.PerMonth
	case Year:
		return l.PerYear
	}
	return 0
}

func durationLimitFor(l model.DurationLimits, g Granularity) time.Duration {
	switch g {
	case Day:
		return l.PerDay
	case Week:
		return l.PerWeek
	case Month:
		return l.PerMonth
	case Year:
		return l.PerYear
	}
	return 0
}
