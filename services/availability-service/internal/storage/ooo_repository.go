package storage

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/slotengine/libs/db"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

type OutOfOfficeRepository struct {
	pool *db.Pool
}

func NewOutOfOfficeRepository(pool *db.Pool) *OutOfOfficeRepository {
	return &OutOfOfficeRepository{pool: pool}
}

func (r *OutOfOfficeRepository) FindManyBetween(ctx context.Context, userIDs []int64, start, end time.Time) ([]model.OutOfOfficeEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.user_id, COALESCE(o.to_user_id, 0), o.start_time, o.end_time,
			COALESCE(r.reason, ''), COALESCE(r.emoji, '')
		FROM out_of_office_entries o
		LEFT JOIN out_of_office_reasons r ON r.id = o.reason_id
		WHERE o.user_id = ANY($1)
			AND o.start_time < $3
			AND o.end_time > $2
		ORDER BY o.start_time ASC
	`, userIDs, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OutOfOfficeEntry
	for rows.Next() {
		var e model.OutOfOfficeEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.ToUserID,
			&e.Start,
			&e.End,
			&e.Reason,
			&e.Emoji,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
