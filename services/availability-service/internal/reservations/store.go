package reservations

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

// Store keeps reserved slots in Redis. Each hold lives at its own key with
// a TTL slightly past its logical expiry; per-user and per-event-type sets
// index the keys for lookup and cleanup. Index members whose payload key
// has already expired are pruned opportunistically.
type Store struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewStore(rdb *redis.Client, logger *slog.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

func slotKey(uid string) string          { return "reserved:slot:" + uid }
func userIndexKey(userID int64) string   { return fmt.Sprintf("reserved:user:%d", userID) }
func eventIndexKey(eventID int64) string { return fmt.Sprintf("reserved:event:%d", eventID) }

type slotPayload struct {
	UID         string    `json:"uid"`
	EventTypeID int64     `json:"event_type_id"`
	UserID      int64     `json:"user_id"`
	SlotStart   time.Time `json:"slot_start"`
	SlotEnd     time.Time `json:"slot_end"`
	ExpiresAt   time.Time `json:"expires_at"`
	IsSeat      bool      `json:"is_seat"`
}

// Hold creates a reservation. The caller supplies slot times and the seat
// flag; the store assigns the uid and expiry.
func (s *Store) Hold(ctx context.Context, slot model.ReservedSlot, ttl time.Duration) (model.ReservedSlot, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	slot.UID = uuid.NewString()
	slot.ExpiresAt = time.Now().UTC().Add(ttl)

	payload, err := json.Marshal(slotPayload(slot))
	if err != nil {
		return model.ReservedSlot{}, err
	}

	pipe := s.rdb.TxPipeline()
	// Keep the payload a bit past its logical expiry so readers see the
	// record as expired instead of silently missing.
	pipe.Set(ctx, slotKey(slot.UID), payload, ttl+time.Minute)
	pipe.SAdd(ctx, userIndexKey(slot.UserID), slot.UID)
	pipe.SAdd(ctx, eventIndexKey(slot.EventTypeID), slot.UID)
	if _, err := pipe.Exec(ctx); err != nil {
		return model.ReservedSlot{}, err
	}
	return slot, nil
}

// FindManyUnexpired returns every live hold for the given users.
func (s *Store) FindManyUnexpired(ctx context.Context, userIDs []int64, now time.Time) ([]model.ReservedSlot, error) {
	var uids []string
	for _, id := range userIDs {
		members, err := s.rdb.SMembers(ctx, userIndexKey(id)).Result()
		if err != nil {
			return nil, err
		}
		uids = append(uids, members...)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(uids))
	for i, uid := range uids {
		keys[i] = slotKey(uid)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var out []model.ReservedSlot
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Payload TTL fired; drop the dangling index member.
			s.pruneIndex(ctx, userIDs, uids[i])
			continue
		}
		var p slotPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			s.logger.Warn("corrupt reserved slot payload", "uid", uids[i], "err", err)
			continue
		}
		slot := model.ReservedSlot(p)
		if slot.Expired(now) {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

// DeleteManyExpired removes expired holds for one event type. It is
// best-effort and delete-if-exists: concurrent computations may race on
// the same holds without error.
func (s *Store) DeleteManyExpired(ctx context.Context, eventTypeID int64, now time.Time) error {
	idx := eventIndexKey(eventTypeID)
	uids, err := s.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		return err
	}
	if len(uids) == 0 {
		return nil
	}

	keys := make([]string, len(uids))
	for i, uid := range uids {
		keys[i] = slotKey(uid)
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	removed := 0
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			pipe.SRem(ctx, idx, uids[i])
			removed++
			continue
		}
		var p slotPayload
		if err := json.Unmarshal([]byte(raw), &p); err != nil || !p.ExpiresAt.After(now) {
			pipe.Del(ctx, keys[i])
			pipe.SRem(ctx, idx, uids[i])
			pipe.SRem(ctx, userIndexKey(p.UserID), uids[i])
			removed++
		}
	}
	if removed == 0 {
		return nil
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) pruneIndex(ctx context.Context, userIDs []int64, uid string) {
	pipe := s.rdb.Pipeline()
	for _, id := range userIDs {
		pipe.SRem(ctx, userIndexKey(id), uid)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("reserved slot index prune failed", "uid", uid, "err", err)
	}
}
