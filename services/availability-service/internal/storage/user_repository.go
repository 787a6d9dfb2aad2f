package storage

import (
	"context"

	"github.com/md-rashed-zaman/slotengine/libs/db"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

type UserRepository struct {
	pool *db.Pool
}

func NewUserRepository(pool *db.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByUsernames(ctx context.Context, usernames []string) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, email, timezone,
			COALESCE(default_schedule_id, 0), allow_dynamic_booking
		FROM users
		WHERE username = ANY($1)
		ORDER BY id ASC
	`, usernames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.TimeZone,
			&u.DefaultScheduleID,
			&u.AllowDynamicBooking,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
