package engine

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/daterange"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

// hostContext is a host record enriched with everything the availability
// computation needs: the resolved schedule, travel overrides, current
// bookings, and out-of-office days. Built explicitly instead of decorating
// the base record field by field.
type hostContext struct {
	Host        model.Host
	Schedule    *model.Schedule
	IsDefault   bool
	Travel      []model.TravelSchedule
	Bookings    []model.Booking
	OutOfOffice []model.OutOfOfficeEntry
}

type hostContextBuilder struct {
	schedules ScheduleStore
	bookings  BookingStore
	ooo       OutOfOfficeStore
}

// build assembles host contexts for the window. The bookings and
// out-of-office fetches are independent reads and run concurrently.
func (b hostContextBuilder) build(ctx context.Context, et *model.EventType, hosts []model.Host, from, to time.Time) ([]hostContext, error) {
	userIDs := make([]int64, len(hosts))
	for i, h := range hosts {
		userIDs[i] = h.User.ID
	}

	var (
		bookings []model.Booking
		oooList  []model.OutOfOfficeEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = b.bookings.FindAllBetween(gctx, userIDs, et.ID, from, to, et.Seated())
		return err
	})
	g.Go(func() error {
		var err error
		oooList, err = b.ooo.FindManyBetween(gctx, userIDs, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, Internal("fetching bookings and out-of-office", err)
	}

	out := make([]hostContext, 0, len(hosts))
	for _, h := range hosts {
		scheduleID := h.ScheduleID
		if et.ScheduleID != 0 {
			scheduleID = et.ScheduleID
		}
		if scheduleID == 0 {
			scheduleID = h.User.DefaultScheduleID
		}
		if scheduleID == 0 {
			return nil, NotFound("host has no schedule")
		}
		schedule, err := b.schedules.FindForBuildDateRanges(ctx, scheduleID)
		if err != nil {
			return nil, Internal("loading schedule", err)
		}
		if schedule == nil {
			return nil, NotFound("schedule not found")
		}

		hc := hostContext{
			Host:      h,
			Schedule:  schedule,
			IsDefault: scheduleID == h.User.DefaultScheduleID,
		}
		if hc.IsDefault {
			travel, err := b.schedules.FindTravelSchedules(ctx, h.User.ID)
			if err != nil {
				return nil, Internal("loading travel schedules", err)
			}
			hc.Travel = travel
		}
		for _, bk := range bookings {
			if bk.UserID == h.User.ID {
				hc.Bookings = append(hc.Bookings, bk)
			}
		}
		for _, e := range oooList {
			if e.UserID == h.User.ID {
				hc.OutOfOffice = append(hc.OutOfOffice, e)
			}
		}
		out = append(out, hc)
	}
	return out, nil
}

// busyRanges expands the host's bookings by the event buffers.
func (hc hostContext) busyRanges(before, after time.Duration) []daterange.Range {
	out := make([]daterange.Range, 0, len(hc.Bookings))
	for _, b := range hc.Bookings {
		out = append(out, daterange.Range{
			Start: b.Start.Add(-before).UTC(),
			End:   b.End.Add(after).UTC(),
		})
	}
	return out
}

func (hc hostContext) oooRanges() []daterange.Range {
	out := make([]daterange.Range, 0, len(hc.OutOfOffice))
	for _, e := range hc.OutOfOffice {
		out = append(out, daterange.Range{Start: e.Start.UTC(), End: e.End.UTC()})
	}
	return out
}
