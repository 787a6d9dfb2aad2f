package reservations

import (
	"testing"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

func slotAt(h int) model.CandidateSlot {
	return model.CandidateSlot{Start: time.Date(2026, 2, 2, h, 0, 0, 0, time.UTC)}
}

func holdAt(h int, seat bool) model.ReservedSlot {
	start := time.Date(2026, 2, 2, h, 0, 0, 0, time.UTC)
	return model.ReservedSlot{
		SlotStart: start,
		SlotEnd:   start.Add(30 * time.Minute),
		ExpiresAt: start.AddDate(0, 0, 1),
		IsSeat:    seat,
	}
}

func TestApply_HardHoldRemovesSlot(t *testing.T) {
	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	candidates := []model.CandidateSlot{slotAt(9), slotAt(10), slotAt(11)}
	reserved := []model.ReservedSlot{holdAt(10, false)}

	out := Apply(candidates, 30*time.Minute, 0, reserved, now)
	if len(out) != 2 {
		t.Fatalf("expected 2 slots, got %d: %v", len(out), out)
	}
	for _, c := range out {
		if c.Start.Hour() == 10 {
			t.Fatal("held slot should have been removed")
		}
	}
}

func TestApply_ExpiredHoldIgnored(t *testing.T) {
	now := time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC) // past all expiries
	candidates := []model.CandidateSlot{slotAt(10)}
	reserved := []model.ReservedSlot{holdAt(10, false)}

	out := Apply(candidates, 30*time.Minute, 0, reserved, now)
	if len(out) != 1 {
		t.Fatalf("expired hold must not block the slot, got %v", out)
	}
}

func TestApply_SeatHoldsCountTowardCapacity(t *testing.T) {
	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	// 3 seats, 1 confirmed attendee, 2 seat holds: a new booker would be
	// the 4th claim on 3 seats, so the slot must go.
	c := slotAt(10)
	c.Attendees = 1
	reserved := []model.ReservedSlot{holdAt(10, true), holdAt(10, true)}

	out := Apply([]model.CandidateSlot{c}, 30*time.Minute, 3, reserved, now)
	if len(out) != 0 {
		t.Fatalf("slot over capacity should be removed, got %v", out)
	}
}

func TestApply_SeatHoldsUnderCapacityKeepSlot(t *testing.T) {
	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	c := slotAt(10)
	c.Attendees = 1
	reserved := []model.ReservedSlot{holdAt(10, true)}

	out := Apply([]model.CandidateSlot{c}, 30*time.Minute, 3, reserved, now)
	if len(out) != 1 {
		t.Fatalf("expected slot to survive, got %v", out)
	}
	if out[0].Attendees != 1 {
		t.Fatalf("displayed attendees must stay at confirmed count, got %d", out[0].Attendees)
	}
}

func TestAnnotateSeats(t *testing.T) {
	seated := []model.Booking{
		{UID: "abc", Start: time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC), Attendees: 2},
		{UID: "full", Start: time.Date(2026, 2, 2, 11, 0, 0, 0, time.UTC), Attendees: 3},
	}
	candidates := []model.CandidateSlot{slotAt(9), slotAt(10), slotAt(11)}

	out := AnnotateSeats(candidates, seated, 3)
	if len(out) != 2 {
		t.Fatalf("full slot should be dropped, got %d: %v", len(out), out)
	}
	if out[0].Attendees != 0 || out[0].BookingUID != "" {
		t.Fatalf("unseated slot should stay bare, got %+v", out[0])
	}
	if out[1].Attendees != 2 || out[1].BookingUID != "abc" {
		t.Fatalf("expected seat annotation, got %+v", out[1])
	}
}

func TestApply_CapacityInvariant(t *testing.T) {
	// After annotation and filtering, no surviving slot may report
	// attendees at or above capacity.
	const seats = 2
	seated := []model.Booking{
		{UID: "a", Start: time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC), Attendees: 1},
		{UID: "b", Start: time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC), Attendees: 2},
	}
	candidates := []model.CandidateSlot{slotAt(9), slotAt(10), slotAt(11)}
	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

	out := Apply(AnnotateSeats(candidates, seated, seats), 30*time.Minute, seats, nil, now)
	for _, c := range out {
		if c.Attendees >= seats {
			t.Fatalf("slot %v violates the capacity invariant", c)
		}
	}
	if len(out) != 2 {
		t.Fatalf("expected 09:00 and 11:00 to survive, got %v", out)
	}
}
