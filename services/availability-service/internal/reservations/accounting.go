package reservations

import (
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

// Apply folds reserved slots (in-flight holds and seat occupancy) into the
// candidate list. Non-seat holds are hard busy time: any overlap removes
// the slot. Seat holds count toward capacity; a slot is removed when its
// confirmed attendees plus held seats would exceed seatsPerTimeSlot. The
// displayed attendee count stays at the confirmed number so a booker sees
// real occupancy, not transient holds.
//
// Expired holds are ignored here; cleanup is the store's job.
func Apply(candidates []model.CandidateSlot, length time.Duration, seatsPerSlot int, reserved []model.ReservedSlot, now time.Time) []model.CandidateSlot {
	if len(reserved) == 0 {
		return candidates
	}

	out := candidates[:0]
	for _, c := range candidates {
		slotEnd := c.Start.Add(length)
		held := 0
		conflict := false
		for _, r := range reserved {
			if r.Expired(now) {
				continue
			}
			if !r.SlotStart.Before(slotEnd) || !c.Start.Before(r.SlotEnd) {
				continue
			}
			if !r.IsSeat {
				conflict = true
				break
			}
			held++
		}
		if conflict {
			continue
		}
		if seatsPerSlot > 0 {
			if c.Attendees+held >= seatsPerSlot {
				continue
			}
		} else if held > 0 {
			// Unseated events cannot share a slot at all.
			continue
		}
		out = append(out, c)
	}
	return out
}

// AnnotateSeats attaches confirmed seat occupancy to matching candidates:
// the attendee count and the booking uid a new attendee would join.
// Candidates already at capacity are dropped.
func AnnotateSeats(candidates []model.CandidateSlot, seated []model.Booking, seatsPerSlot int) []model.CandidateSlot {
	if len(seated) == 0 || seatsPerSlot <= 0 {
		return candidates
	}

	byStart := make(map[int64]model.Booking, len(seated))
	for _, b := range seated {
		byStart[b.Start.Unix()] = b
	}

	out := candidates[:0]
	for _, c := range candidates {
		if b, ok := byStart[c.Start.Unix()]; ok {
			if b.Attendees >= seatsPerSlot {
				continue
			}
			c.Attendees = b.Attendees
			c.BookingUID = b.UID
		}
		out = append(out, c)
	}
	return out
}
