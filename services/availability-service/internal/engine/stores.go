package engine

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/limits"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

// The engine consumes persistence through these narrow interfaces; the
// pgx implementations live in internal/storage.

type EventTypeStore interface {
	FindByID(ctx context.Context, id int64) (*model.EventType, error)
	FindBySlug(ctx context.Context, teamSlug, slug string) (*model.EventType, error)
	FindHosts(ctx context.Context, eventTypeID int64) ([]model.Host, error)
}

type UserStore interface {
	FindByUsernames(ctx context.Context, usernames []string) ([]model.User, error)
}

type ScheduleStore interface {
	// FindForBuildDateRanges loads a schedule with its rules.
	FindForBuildDateRanges(ctx context.Context, scheduleID int64) (*model.Schedule, error)
	FindTravelSchedules(ctx context.Context, userID int64) ([]model.TravelSchedule, error)
}

type BookingStore interface {
	// FindAllBetween returns accepted bookings overlapping [start, end)
	// for the given users, attendee counts included when seated is set.
	FindAllBetween(ctx context.Context, userIDs []int64, eventTypeID int64, start, end time.Time, seated bool) ([]model.Booking, error)
	// FindBusyForLimitChecks returns the snapshot used by the limit
	// evaluator; callers extend the window to the coarsest granularity.
	FindBusyForLimitChecks(ctx context.Context, userIDs []int64, eventTypeID int64, start, end time.Time) ([]limits.BusyInterval, error)
	// CountBookings is the live year-limit check.
	CountBookings(ctx context.Context, userID, eventTypeID int64, start, end time.Time) (int, error)
}

type OutOfOfficeStore interface {
	FindManyBetween(ctx context.Context, userIDs []int64, start, end time.Time) ([]model.OutOfOfficeEntry, error)
}

type ReservationStore interface {
	FindManyUnexpired(ctx context.Context, userIDs []int64, now time.Time) ([]model.ReservedSlot, error)
	DeleteManyExpired(ctx context.Context, eventTypeID int64, now time.Time) error
}

// Notifier is told about computations that produced no slots. Failures
// are logged and swallowed; availability must still be returned.
type Notifier interface {
	EmptyAvailability(ctx context.Context, eventTypeID int64, slug string, from, to time.Time) error
}
