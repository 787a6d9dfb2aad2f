package model

import "time"

type Booking struct {
	ID          int64
	UID         string
	EventTypeID int64
	UserID      int64
	Start       time.Time
	End         time.Time
	Status      string
	Attendees   int // confirmed attendee count for seated bookings
}

// ReservedSlot is a transient hold taken while a booker is mid-flow, or a
// confirmed seat occupancy to be counted toward capacity. Holds expire at
// ExpiresAt and are cleaned up opportunistically.
type ReservedSlot struct {
	UID         string
	EventTypeID int64
	UserID      int64
	SlotStart   time.Time
	SlotEnd     time.Time
	ExpiresAt   time.Time
	IsSeat      bool
}

func (r ReservedSlot) Expired(now time.Time) bool { return !r.ExpiresAt.After(now) }

// CandidateSlot is a slot start under consideration, annotated as the
// pipeline folds in seat occupancy and out-of-office context. All times
// are UTC until the final grouping step.
type CandidateSlot struct {
	Start      time.Time
	Attendees  int
	BookingUID string
	Away       bool
	Reason     string
	Emoji      string
}
