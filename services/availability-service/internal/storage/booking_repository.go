package storage

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/slotengine/libs/db"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/limits"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

type BookingRepository struct {
	pool *db.Pool
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

// FindAllBetween returns accepted bookings overlapping [start, end) for
// the given users. With seated set, attendee counts are aggregated in so
// the pipeline can do seat accounting without a second query.
func (r *BookingRepository) FindAllBetween(ctx context.Context, userIDs []int64, eventTypeID int64, start, end time.Time, seated bool) ([]model.Booking, error) {
	attendeeExpr := "0"
	if seated {
		attendeeExpr = "(SELECT COUNT(*) FROM booking_attendees a WHERE a.booking_id = b.id)"
	}
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.uid, b.event_type_id, b.user_id, b.start_time, b.end_time, b.status,
			`+attendeeExpr+`
		FROM bookings b
		WHERE b.user_id = ANY($1)
			AND b.event_type_id = $2
			AND b.status = 'accepted'
			AND b.start_time < $4
			AND b.end_time > $3
		ORDER BY b.start_time ASC
	`, userIDs, eventTypeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID,
			&b.UID,
			&b.EventTypeID,
			&b.UserID,
			&b.Start,
			&b.End,
			&b.Status,
			&b.Attendees,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// FindBusyForLimitChecks returns the snapshot the limit evaluator counts
// against: accepted bookings of this event type whose start falls in the
// extended window.
func (r *BookingRepository) FindBusyForLimitChecks(ctx context.Context, userIDs []int64, eventTypeID int64, start, end time.Time) ([]limits.BusyInterval, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.user_id, b.start_time, b.end_time
		FROM bookings b
		WHERE b.user_id = ANY($1)
			AND b.event_type_id = $2
			AND b.status = 'accepted'
			AND b.start_time < $4
			AND b.end_time > $3
		ORDER BY b.start_time ASC
	`, userIDs, eventTypeID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []limits.BusyInterval
	for rows.Next() {
		var b limits.BusyInterval
		if err := rows.Scan(&b.UserID, &b.Start, &b.End); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CountBookings is the live year-limit check. userID 0 counts across all
// hosts of the event type.
func (r *BookingRepository) CountBookings(ctx context.Context, userID, eventTypeID int64, start, end time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM bookings
		WHERE event_type_id = $1
			AND ($2 = 0 OR user_id = $2)
			AND status = 'accepted'
			AND start_time >= $3
			AND start_time < $4
	`, eventTypeID, userID, start, end).Scan(&n)
	return n, err
}
