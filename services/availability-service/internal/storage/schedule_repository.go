package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/slotengine/libs/db"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// FindForBuildDateRanges loads a schedule together with its weekly and
// date-override rules, ready for date-range expansion.
func (r *ScheduleRepository) FindForBuildDateRanges(ctx context.Context, scheduleID int64) (*model.Schedule, error) {
	var s model.Schedule
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, COALESCE(timezone, '')
		FROM schedules
		WHERE id = $1
	`, scheduleID).Scan(&s.ID, &s.UserID, &s.Name, &s.TimeZone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT days, override_date, start_minutes, end_minutes
		FROM schedule_availability
		WHERE schedule_id = $1
		ORDER BY id ASC
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			days         []int32
			overrideDate *time.Time
			startMin     int
			endMin       int
		)
		if err := rows.Scan(&days, &overrideDate, &startMin, &endMin); err != nil {
			return nil, err
		}
		rule := model.AvailabilityRule{
			Date:  overrideDate,
			Start: time.Duration(startMin) * time.Minute,
			End:   time.Duration(endMin) * time.Minute,
		}
		for _, d := range days {
			rule.Days = append(rule.Days, time.Weekday(d))
		}
		s.Rules = append(s.Rules, rule)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return &s, nil
}

func (r *ScheduleRepository) FindTravelSchedules(ctx context.Context, userID int64) ([]model.TravelSchedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, timezone, start_date, end_date
		FROM travel_schedules
		WHERE user_id = $1
		ORDER BY start_date ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TravelSchedule
	for rows.Next() {
		var t model.TravelSchedule
		if err := rows.Scan(&t.UserID, &t.TimeZone, &t.Start, &t.End); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
