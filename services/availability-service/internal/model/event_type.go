package model

import "time"

type SchedulingType string

const (
	SchedulingSingle     SchedulingType = "single"
	SchedulingCollective SchedulingType = "collective"
	SchedulingRoundRobin SchedulingType = "roundRobin"
)

type PeriodType string

const (
	PeriodUnlimited PeriodType = "unlimited"
	PeriodRolling   PeriodType = "rolling"
	PeriodRange     PeriodType = "range"
)

// BookingLimits caps the number of bookings per calendar period.
// A zero value for a period means that period is unconstrained.
type BookingLimits struct {
	PerDay   int
	PerWeek  int
	PerMonth int
	PerYear  int
}

func (l BookingLimits) Empty() bool {
	return l.PerDay == 0 && l.PerWeek == 0 && l.PerMonth == 0 && l.PerYear == 0
}

// DurationLimits caps cumulative booked time per calendar period.
type DurationLimits struct {
	PerDay   time.Duration
	PerWeek  time.Duration
	PerMonth time.Duration
	PerYear  time.Duration
}

func (l DurationLimits) Empty() bool {
	return l.PerDay == 0 && l.PerWeek == 0 && l.PerMonth == 0 && l.PerYear == 0
}

// EventType is the bookable meeting template. It is loaded once per slot
// computation and treated as immutable afterwards.
type EventType struct {
	ID     int64
	TeamID int64
	Slug   string
	Title  string

	Length         time.Duration
	SchedulingType SchedulingType

	SlotInterval         time.Duration // 0 means use Length
	OffsetStart          time.Duration
	MinimumBookingNotice time.Duration
	BeforeBuffer         time.Duration
	AfterBuffer          time.Duration

	BookingLimits  BookingLimits
	DurationLimits DurationLimits

	PeriodType  PeriodType
	PeriodDays  int
	PeriodStart *time.Time
	PeriodEnd   *time.Time

	// ScheduleID, when set, pins every host of this event to a common
	// schedule instead of each host's own default.
	ScheduleID int64

	RestrictionScheduleID int64
	UseBookerTimezone     bool

	SeatsPerTimeSlot int // 0 means not a seated event

	TimeZone string // optional event-level timezone override
}

func (et *EventType) Seated() bool { return et.SeatsPerTimeSlot > 0 }

// Interval returns the slot generation frequency, falling back to the
// event length when no explicit interval is configured.
func (et *EventType) Interval() time.Duration {
	if et.SlotInterval > 0 {
		return et.SlotInterval
	}
	return et.Length
}
