package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/slotengine/libs/db"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

type EventTypeRepository struct {
	pool *db.Pool
}

func NewEventTypeRepository(pool *db.Pool) *EventTypeRepository {
	return &EventTypeRepository{pool: pool}
}

const eventTypeColumns = `
	id, COALESCE(team_id, 0), slug, title,
	length_minutes, scheduling_type,
	COALESCE(slot_interval_minutes, 0), COALESCE(offset_start_minutes, 0),
	COALESCE(minimum_booking_notice_minutes, 0),
	COALESCE(before_buffer_minutes, 0), COALESCE(after_buffer_minutes, 0),
	COALESCE(booking_limit_day, 0), COALESCE(booking_limit_week, 0),
	COALESCE(booking_limit_month, 0), COALESCE(booking_limit_year, 0),
	COALESCE(duration_limit_day_minutes, 0), COALESCE(duration_limit_week_minutes, 0),
	COALESCE(duration_limit_month_minutes, 0), COALESCE(duration_limit_year_minutes, 0),
	period_type, COALESCE(period_days, 0), period_start, period_end,
	COALESCE(schedule_id, 0), COALESCE(restriction_schedule_id, 0),
	use_booker_timezone, COALESCE(seats_per_time_slot, 0), COALESCE(timezone, '')`

func (r *EventTypeRepository) FindByID(ctx context.Context, id int64) (*model.EventType, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+eventTypeColumns+`
		FROM event_types
		WHERE id = $1
	`, id)
	return scanEventType(row)
}

func (r *EventTypeRepository) FindBySlug(ctx context.Context, teamSlug, slug string) (*model.EventType, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT`+eventTypeColumns+`
		FROM event_types et
		WHERE et.slug = $2
			AND ($1 = '' OR et.team_id = (SELECT id FROM teams WHERE slug = $1))
	`, teamSlug, slug)
	return scanEventType(row)
}

func (r *EventTypeRepository) FindHosts(ctx context.Context, eventTypeID int64) ([]model.Host, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.username, u.email, u.timezone,
			COALESCE(u.default_schedule_id, 0), u.allow_dynamic_booking,
			h.is_fixed, COALESCE(h.schedule_id, 0)
		FROM event_hosts h
		JOIN users u ON u.id = h.user_id
		WHERE h.event_type_id = $1
		ORDER BY h.priority DESC, u.id ASC
	`, eventTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hosts []model.Host
	for rows.Next() {
		var h model.Host
		if err := rows.Scan(
			&h.User.ID,
			&h.User.Username,
			&h.User.Email,
			&h.User.TimeZone,
			&h.User.DefaultScheduleID,
			&h.User.AllowDynamicBooking,
			&h.IsFixed,
			&h.ScheduleID,
		); err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

func scanEventType(row pgx.Row) (*model.EventType, error) {
	var (
		et             model.EventType
		lengthMin      int
		schedType      string
		intervalMin    int
		offsetMin      int
		noticeMin      int
		beforeMin      int
		afterMin       int
		durDay         int
		durWeek        int
		durMonth       int
		durYear        int
		periodType     string
		periodStart    *time.Time
		periodEnd      *time.Time
		seatsPerSlot   int
	)
	err := row.Scan(
		&et.ID,
		&et.TeamID,
		&et.Slug,
		&et.Title,
		&lengthMin,
		&schedType,
		&intervalMin,
		&offsetMin,
		&noticeMin,
		&beforeMin,
		&afterMin,
		&et.BookingLimits.PerDay,
		&et.BookingLimits.PerWeek,
		&et.BookingLimits.PerMonth,
		&et.BookingLimits.PerYear,
		&durDay,
		&durWeek,
		&durMonth,
		&durYear,
		&periodType,
		&et.PeriodDays,
		&periodStart,
		&periodEnd,
		&et.ScheduleID,
		&et.RestrictionScheduleID,
		&et.UseBookerTimezone,
		&seatsPerSlot,
		&et.TimeZone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	et.Length = time.Duration(lengthMin) * time.Minute
	et.SchedulingType = model.SchedulingType(schedType)
	et.SlotInterval = time.Duration(intervalMin) * time.Minute
	et.OffsetStart = time.Duration(offsetMin) * time.Minute
	et.MinimumBookingNotice = time.Duration(noticeMin) * time.Minute
	et.BeforeBuffer = time.Duration(beforeMin) * time.Minute
	et.AfterBuffer = time.Duration(afterMin) * time.Minute
	et.DurationLimits = model.DurationLimits{
		PerDay:   time.Duration(durDay) * time.Minute,
		PerWeek:  time.Duration(durWeek) * time.Minute,
		PerMonth: time.Duration(durMonth) * time.Minute,
		PerYear:  time.Duration(durYear) * time.Minute,
	}
	et.PeriodType = model.PeriodType(periodType)
	et.PeriodStart = periodStart
	et.PeriodEnd = periodEnd
	et.SeatsPerTimeSlot = seatsPerSlot
	return &et, nil
}
