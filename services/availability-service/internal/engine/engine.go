package engine

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/aggregate"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/daterange"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/fairness"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/limits"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/reservations"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/slots"
)

const defaultDynamicLength = 30 * time.Minute

// Request is the validated input for one slot computation. Exactly one of
// EventTypeID, EventTypeSlug, or Usernames identifies the event.
type Request struct {
	EventTypeID   int64
	TeamSlug      string
	EventTypeSlug string
	Usernames     []string

	Start    time.Time
	End      time.Time
	TimeZone string // booker timezone, used for date grouping

	Duration time.Duration // optional length override

	RoutedTeamMemberIDs []int64
	ContactOwnerEmail   string

	WithTroubleshooting bool
}

// Engine runs the availability pipeline. It holds no per-request state;
// every computation is independent and idempotent for a fixed snapshot.
type Engine struct {
	eventTypes   EventTypeStore
	users        UserStore
	schedules    ScheduleStore
	bookings     BookingStore
	ooo          OutOfOfficeStore
	reservations ReservationStore
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
}

type Option func(*Engine)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func New(eventTypes EventTypeStore, users UserStore, schedules ScheduleStore, bookings BookingStore, ooo OutOfOfficeStore, res ReservationStore, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		eventTypes:   eventTypes,
		users:        users,
		schedules:    schedules,
		bookings:     bookings,
		ooo:          ooo,
		reservations: res,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetAvailableSlots resolves the event type and hosts, computes availability
// with fairness fallback, and emits the grouped slot map.
func (e *Engine) GetAvailableSlots(ctx context.Context, req Request) (*Result, error) {
	now := e.now()

	if !req.End.After(req.Start) {
		return nil, BadRequest("invalid time range: end must be after start")
	}
	if req.End.Before(now) {
		return nil, BadRequest("requested time range is entirely in the past")
	}
	bookerLoc, err := loadLocation(req.TimeZone)
	if err != nil {
		return nil, err
	}

	et, hosts, err := e.resolveEventType(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Duration > 0 {
		et.Length = req.Duration
	}
	if len(hosts) == 0 {
		return nil, NotFound("event type has no hosts")
	}

	ts := &Troubleshooting{RoutedTeamMemberIDs: req.RoutedTeamMemberIDs}
	qualified, pool := e.partitionHosts(et, hosts, req, ts)

	var eventSchedule *model.Schedule
	if et.ScheduleID != 0 {
		eventSchedule, err = e.schedules.FindForBuildDateRanges(ctx, et.ScheduleID)
		if err != nil {
			return nil, Internal("loading event schedule", err)
		}
	}
	eventTZ := resolveEventTimezone(et, eventSchedule, nil, hosts, req.TimeZone)
	eventLoc, err := loadLocation(eventTZ)
	if err != nil {
		return nil, err
	}

	from, to := req.Start.UTC(), req.End.UTC()

	activeHosts := qualified
	var ranges []daterange.Range
	var hcs []hostContext

	if et.SchedulingType == model.SchedulingRoundRobin && len(qualified) < len(pool) {
		// Fairness pass: qualified hosts first, over a window extended to
		// cover the next two weeks so the fallback decision sees them.
		extFrom, extTo := from, to
		if extFrom.After(now) {
			extFrom = now
		}
		if fairTo := now.Add(fairness.Window); extTo.Before(fairTo) {
			extTo = fairTo
		}
		ranges, hcs, err = e.computeAvailability(ctx, et, qualified, extFrom, extTo, eventLoc)
		if err != nil {
			return nil, err
		}
		earliest := earliestStart(ranges, now)
		if fairness.NeedsFallback(now, earliest) {
			ts.UsedFallbackHosts = true
			activeHosts = pool
			ranges, hcs, err = e.computeAvailability(ctx, et, pool, from, to, eventLoc)
			if err != nil {
				return nil, err
			}
		} else {
			ranges = daterange.Clamp(ranges, from, to)
		}
	} else {
		activeHosts = pool
		ranges, hcs, err = e.computeAvailability(ctx, et, pool, from, to, eventLoc)
		if err != nil {
			return nil, err
		}
	}

	gen := slots.Generator{
		Length:        et.Length,
		Frequency:     et.Interval(),
		OffsetStart:   et.OffsetStart,
		MinimumNotice: et.MinimumBookingNotice,
		Now:           now,
	}
	var candidates []model.CandidateSlot
	for t := range gen.Sequence(ranges) {
		candidates = append(candidates, model.CandidateSlot{Start: t})
	}

	candidates, err = e.applyRestrictionSchedule(ctx, et, req.TimeZone, candidates, from, to)
	if err != nil {
		return nil, err
	}

	candidates, err = e.applyReservationsAndSeats(ctx, et, activeHosts, candidates, from, to, now)
	if err != nil {
		return nil, err
	}

	candidates = applyPeriodBounds(et, candidates, now, eventLoc)

	result := &Result{Slots: groupByDate(candidates, bookerLoc)}
	if et.SchedulingType == model.SchedulingSingle && len(hcs) == 1 {
		annotateAway(result.Slots, hcs[0], bookerLoc, from, to)
	}
	if req.WithTroubleshooting {
		result.Troubleshooting = ts
	}

	if len(result.Slots) == 0 && e.notifier != nil {
		e.notifyEmpty(et, from, to)
	}
	return result, nil
}

func (e *Engine) resolveEventType(ctx context.Context, req Request) (*model.EventType, []model.Host, error) {
	if len(req.Usernames) > 0 {
		return e.resolveDynamicGroup(ctx, req)
	}

	var (
		et  *model.EventType
		err error
	)
	switch {
	case req.EventTypeID != 0:
		et, err = e.eventTypes.FindByID(ctx, req.EventTypeID)
	case req.EventTypeSlug != "":
		et, err = e.eventTypes.FindBySlug(ctx, req.TeamSlug, req.EventTypeSlug)
	default:
		return nil, nil, BadRequest("event type id, slug, or usernames required")
	}
	if err != nil {
		return nil, nil, Internal("resolving event type", err)
	}
	if et == nil {
		return nil, nil, NotFound("event type not found")
	}

	hosts, err := e.eventTypes.FindHosts(ctx, et.ID)
	if err != nil {
		return nil, nil, Internal("resolving hosts", err)
	}
	return et, hosts, nil
}

// resolveDynamicGroup builds a synthetic collective event from a list of
// usernames. Every member must allow dynamic booking.
func (e *Engine) resolveDynamicGroup(ctx context.Context, req Request) (*model.EventType, []model.Host, error) {
	users, err := e.users.FindByUsernames(ctx, req.Usernames)
	if err != nil {
		return nil, nil, Internal("resolving dynamic group", err)
	}
	if len(users) != len(req.Usernames) {
		return nil, nil, NotFound("dynamic booking group could not be resolved")
	}
	for _, u := range users {
		if !u.AllowDynamicBooking {
			return nil, nil, Unauthorized("user " + u.Username + " does not allow dynamic booking")
		}
	}

	length := defaultDynamicLength
	if req.Duration > 0 {
		length = req.Duration
	}
	et := &model.EventType{
		Slug:           "dynamic",
		Title:          "Group Meeting",
		Length:         length,
		SchedulingType: model.SchedulingCollective,
		PeriodType:     model.PeriodUnlimited,
	}
	hosts := make([]model.Host, len(users))
	for i, u := range users {
		hosts[i] = model.Host{User: u, IsFixed: true}
	}
	return et, hosts, nil
}

// partitionHosts splits the host list into the qualified subset (fixed
// hosts plus round-robin hosts passing routing filters) and the full
// fallback pool (fixed plus all round-robin hosts).
func (e *Engine) partitionHosts(et *model.EventType, hosts []model.Host, req Request, ts *Troubleshooting) (qualified, pool []model.Host) {
	if et.SchedulingType != model.SchedulingRoundRobin {
		return hosts, hosts
	}

	routed := make(map[int64]bool, len(req.RoutedTeamMemberIDs))
	for _, id := range req.RoutedTeamMemberIDs {
		routed[id] = true
	}
	ts.ContactOwnerConsidered = req.ContactOwnerEmail != ""

	for _, h := range hosts {
		pool = append(pool, h)
		if h.IsFixed {
			qualified = append(qualified, h)
			continue
		}
		if req.ContactOwnerEmail != "" && h.User.Email == req.ContactOwnerEmail {
			ts.ContactOwnerAsked = h.User.Email
			qualified = append(qualified, h)
			ts.RoutedHosts = append(ts.RoutedHosts, h.User.Username)
			continue
		}
		if len(routed) > 0 && routed[h.User.ID] {
			qualified = append(qualified, h)
			ts.RoutedHosts = append(ts.RoutedHosts, h.User.Username)
			continue
		}
		if len(routed) == 0 && req.ContactOwnerEmail == "" {
			qualified = append(qualified, h)
		}
	}
	for _, h := range pool {
		ts.PostSegmentHosts = append(ts.PostSegmentHosts, h.User.Username)
	}
	return qualified, pool
}

// computeAvailability builds each host's free/busy picture, applies
// interval limits, and merges per the scheduling policy.
func (e *Engine) computeAvailability(ctx context.Context, et *model.EventType, hosts []model.Host, from, to time.Time, eventLoc *time.Location) ([]daterange.Range, []hostContext, error) {
	builder := hostContextBuilder{schedules: e.schedules, bookings: e.bookings, ooo: e.ooo}
	hcs, err := builder.build(ctx, et, hosts, from, to)
	if err != nil {
		return nil, nil, err
	}

	limitBusy, err := e.evaluateLimits(ctx, et, hosts, from, to, eventLoc)
	if err != nil {
		return nil, nil, err
	}

	avail := make([]aggregate.HostAvailability, 0, len(hcs))
	for _, hc := range hcs {
		ranges, oooExcluded, err := daterange.Build(daterange.BuilderInput{
			Schedule:          *hc.Schedule,
			IsDefaultSchedule: hc.IsDefault,
			Travel:            hc.Travel,
			From:              from,
			To:                to,
			OutOfOffice:       hc.oooRanges(),
		})
		if err != nil {
			return nil, nil, BadRequest(err.Error())
		}

		// Seated bookings keep their slot open while under capacity; the
		// seat annotation step enforces the cap.
		var busy []daterange.Range
		if !et.Seated() {
			busy = hc.busyRanges(et.BeforeBuffer, et.AfterBuffer)
		}
		if m := limitBusy[hc.Host.User.ID]; m != nil {
			busy = append(busy, m.BusyRanges(eventLoc)...)
		}
		avail = append(avail, aggregate.HostAvailability{
			User:        hc.Host.User,
			TimeZone:    hc.Schedule.TimeZone,
			Ranges:      ranges,
			OOOExcluded: oooExcluded,
			Busy:        busy,
		})
	}
	return aggregate.Merge(avail, et.SchedulingType), hcs, nil
}

// evaluateLimits runs the limit evaluator when the event carries booking
// or duration limits, over a window extended to the coarsest granularity.
func (e *Engine) evaluateLimits(ctx context.Context, et *model.EventType, hosts []model.Host, from, to time.Time, eventLoc *time.Location) (map[int64]*limits.Manager, error) {
	if et.BookingLimits.Empty() && et.DurationLimits.Empty() {
		return nil, nil
	}

	coarsest := coarsestGranularity(et)
	extFrom := limits.PeriodStart(coarsest, from, eventLoc).UTC()
	extTo := limits.PeriodEnd(coarsest, limits.PeriodStart(coarsest, to, eventLoc), eventLoc).UTC()

	userIDs := make([]int64, len(hosts))
	for i, h := range hosts {
		userIDs[i] = h.User.ID
	}
	busy, err := e.bookings.FindBusyForLimitChecks(ctx, userIDs, et.ID, extFrom, extTo)
	if err != nil {
		return nil, Internal("fetching busy times for limit checks", err)
	}

	managers, err := limits.Evaluate(ctx, limits.Input{
		UserIDs:     userIDs,
		EventTypeID: et.ID,
		Booking:     et.BookingLimits,
		Duration:    et.DurationLimits,
		From:        from,
		To:          to,
		Location:    eventLoc,
		Busy:        busy,
		Counter:     e.bookings,
	})
	if err != nil {
		return nil, Internal("evaluating interval limits", err)
	}
	return managers, nil
}

func coarsestGranularity(et *model.EventType) limits.Granularity {
	g := limits.Day
	for _, c := range limits.Granularities {
		hasCount := false
		switch c {
		case limits.Day:
			hasCount = et.BookingLimits.PerDay > 0 || et.DurationLimits.PerDay > 0
		case limits.Week:
			hasCount = et.BookingLimits.PerWeek > 0 || et.DurationLimits.PerWeek > 0
		case limits.Month:
			hasCount = et.BookingLimits.PerMonth > 0 || et.DurationLimits.PerMonth > 0
		case limits.Year:
			hasCount = et.BookingLimits.PerYear > 0 || et.DurationLimits.PerYear > 0
		}
		if hasCount {
			g = c
		}
	}
	return g
}

// applyRestrictionSchedule drops candidates that do not fit entirely
// inside the restriction schedule's availability.
func (e *Engine) applyRestrictionSchedule(ctx context.Context, et *model.EventType, bookerTZ string, candidates []model.CandidateSlot, from, to time.Time) ([]model.CandidateSlot, error) {
	if et.RestrictionScheduleID == 0 || len(candidates) == 0 {
		return candidates, nil
	}
	restriction, err := e.schedules.FindForBuildDateRanges(ctx, et.RestrictionScheduleID)
	if err != nil {
		return nil, Internal("loading restriction schedule", err)
	}
	if restriction == nil {
		return nil, NotFound("restriction schedule not found")
	}
	tz, err := restrictionTimezone(et, restriction, bookerTZ)
	if err != nil {
		return nil, err
	}
	clipped := *restriction
	clipped.TimeZone = tz
	allowed, _, err := daterange.Build(daterange.BuilderInput{Schedule: clipped, From: from, To: to})
	if err != nil {
		return nil, BadRequest(err.Error())
	}

	out := candidates[:0]
	for _, c := range candidates {
		end := c.Start.Add(et.Length)
		for _, r := range allowed {
			if r.Contains(c.Start, end) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// applyReservationsAndSeats folds seat occupancy and in-flight holds into
// the candidate list, then kicks off best-effort expired-hold cleanup.
func (e *Engine) applyReservationsAndSeats(ctx context.Context, et *model.EventType, hosts []model.Host, candidates []model.CandidateSlot, from, to time.Time, now time.Time) ([]model.CandidateSlot, error) {
	if e.reservations == nil || len(candidates) == 0 {
		return candidates, nil
	}
	userIDs := make([]int64, len(hosts))
	for i, h := range hosts {
		userIDs[i] = h.User.ID
	}

	if et.Seated() {
		seated, err := e.bookings.FindAllBetween(ctx, userIDs, et.ID, from, to, true)
		if err != nil {
			return nil, Internal("fetching seated bookings", err)
		}
		candidates = reservations.AnnotateSeats(candidates, seated, et.SeatsPerTimeSlot)
	}

	reserved, err := e.reservations.FindManyUnexpired(ctx, userIDs, now)
	if err != nil {
		// Reservation reads are part of correctness: an unreadable store
		// could hand out a slot someone is mid-booking on.
		return nil, Internal("fetching reserved slots", err)
	}
	candidates = reservations.Apply(candidates, et.Length, et.SeatsPerTimeSlot, reserved, now)

	go func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.reservations.DeleteManyExpired(cleanupCtx, et.ID, now); err != nil {
			e.logger.Warn("expired reservation cleanup failed", "event_type_id", et.ID, "err", err)
		}
	}()
	return candidates, nil
}

// applyPeriodBounds enforces the event's booking horizon.
func applyPeriodBounds(et *model.EventType, candidates []model.CandidateSlot, now time.Time, eventLoc *time.Location) []model.CandidateSlot {
	switch et.PeriodType {
	case model.PeriodRolling:
		if et.PeriodDays <= 0 {
			return candidates
		}
		lt := now.In(eventLoc)
		boundary := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, eventLoc).AddDate(0, 0, et.PeriodDays+1)
		out := candidates[:0]
		for _, c := range candidates {
			if c.Start.Before(boundary) {
				out = append(out, c)
			}
		}
		return out
	case model.PeriodRange:
		if et.PeriodStart == nil || et.PeriodEnd == nil {
			return candidates
		}
		out := candidates[:0]
		for _, c := range candidates {
			if !c.Start.Before(*et.PeriodStart) && c.Start.Before(*et.PeriodEnd) {
				out = append(out, c)
			}
		}
		return out
	default:
		return candidates
	}
}

// groupByDate buckets candidates by their booker-local calendar date.
// Slot times stay UTC.
func groupByDate(candidates []model.CandidateSlot, bookerLoc *time.Location) map[string][]Slot {
	out := make(map[string][]Slot)
	for _, c := range candidates {
		key := c.Start.In(bookerLoc).Format("2006-01-02")
		out[key] = append(out[key], Slot{
			Time:       c.Start.UTC(),
			Attendees:  c.Attendees,
			BookingUID: c.BookingUID,
		})
	}
	for _, day := range out {
		sort.Slice(day, func(i, j int) bool { return day[i].Time.Before(day[j].Time) })
	}
	return out
}

// annotateAway marks booker-local dates fully covered by the single
// host's out-of-office entries, so callers can render the away state.
func annotateAway(grouped map[string][]Slot, hc hostContext, bookerLoc *time.Location, from, to time.Time) {
	windowStart := from.In(bookerLoc).AddDate(0, 0, -1)
	windowEnd := to.In(bookerLoc)
	for _, entry := range hc.OutOfOffice {
		day := entry.Start.In(bookerLoc)
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, bookerLoc)
		for day.Before(entry.End.In(bookerLoc)) {
			if day.Before(windowStart) || day.After(windowEnd) {
				day = day.AddDate(0, 0, 1)
				continue
			}
			key := day.Format("2006-01-02")
			if len(grouped[key]) == 0 {
				grouped[key] = []Slot{{
					Time:   day.UTC(),
					Away:   true,
					Reason: entry.Reason,
					Emoji:  entry.Emoji,
				}}
			}
			day = day.AddDate(0, 0, 1)
		}
	}
}

func earliestStart(ranges []daterange.Range, now time.Time) *time.Time {
	for _, r := range ranges {
		if r.End.After(now) {
			start := r.Start
			if start.Before(now) {
				start = now
			}
			return &start
		}
	}
	return nil
}

// notifyEmpty dispatches the zero-availability notification without ever
// failing the computation.
func (e *Engine) notifyEmpty(et *model.EventType, from, to time.Time) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("empty-availability notifier panicked", "recover", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.notifier.EmptyAvailability(ctx, et.ID, et.Slug, from, to); err != nil {
			e.logger.Warn("empty-availability notification failed", "event_type_id", et.ID, "err", err)
		}
	}()
}
