package model

import "time"

type User struct {
	ID                  int64
	Username            string
	Email               string
	TimeZone            string
	DefaultScheduleID   int64
	AllowDynamicBooking bool
}

// Host binds a user to an event type. Fixed hosts are always part of the
// computation; non-fixed hosts on round-robin events are subject to
// qualification filtering and fairness fallback.
type Host struct {
	User       User
	IsFixed    bool
	ScheduleID int64 // per-host schedule override, 0 means user default
}

// Schedule is a named set of availability rules in a single timezone.
type Schedule struct {
	ID       int64
	UserID   int64
	Name     string
	TimeZone string
	Rules    []AvailabilityRule
}

// AvailabilityRule is either a weekly recurrence (Days set, Date nil) or a
// date-specific override (Date set). Start and End are offsets from local
// midnight; an override with Start == End marks the whole date unavailable.
type AvailabilityRule struct {
	Days  []time.Weekday
	Date  *time.Time
	Start time.Duration
	End   time.Duration
}

func (r AvailabilityRule) IsOverride() bool { return r.Date != nil }

// TravelSchedule substitutes a user's timezone within its validity window.
// It only applies while the user's default schedule is being evaluated.
type TravelSchedule struct {
	UserID   int64
	TimeZone string
	Start    time.Time
	End      time.Time
}

type OutOfOfficeEntry struct {
	ID       int64
	UserID   int64
	ToUserID int64
	Start    time.Time
	End      time.Time
	Reason   string
	Emoji    string
}
