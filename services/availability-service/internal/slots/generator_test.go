package slots

import (
	"testing"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/daterange"
)

func day(h, m int) time.Time {
	return time.Date(2026, 2, 2, h, m, 0, 0, time.UTC)
}

func TestSequence_SpacingAndFit(t *testing.T) {
	g := Generator{
		Length:    30 * time.Minute,
		Frequency: 30 * time.Minute,
		Now:       day(0, 0),
	}
	ranges := []daterange.Range{{Start: day(9, 0), End: day(10, 30)}}

	got := g.Collect(ranges)
	want := []time.Time{day(9, 0), day(9, 30), day(10, 0)}
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("slot %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSequence_MinimumNotice(t *testing.T) {
	g := Generator{
		Length:        30 * time.Minute,
		Frequency:     30 * time.Minute,
		MinimumNotice: 2 * time.Hour,
		Now:           day(8, 0),
	}
	ranges := []daterange.Range{{Start: day(9, 0), End: day(11, 0)}}

	got := g.Collect(ranges)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots at/after 10:00, got %v", got)
	}
	if !got[0].Equal(day(10, 0)) {
		t.Fatalf("expected first slot 10:00, got %v", got[0])
	}
}

func TestSequence_OffsetStart(t *testing.T) {
	g := Generator{
		Length:      30 * time.Minute,
		Frequency:   time.Hour,
		OffsetStart: 15 * time.Minute,
		Now:         day(0, 0),
	}
	ranges := []daterange.Range{{Start: day(9, 0), End: day(11, 0)}}

	got := g.Collect(ranges)
	if len(got) != 2 {
		t.Fatalf("expected 2 slots, got %v", got)
	}
	if !got[0].Equal(day(9, 15)) || !got[1].Equal(day(10, 15)) {
		t.Fatalf("expected offset starts 09:15 and 10:15, got %v", got)
	}
}

func TestSequence_Restartable(t *testing.T) {
	g := Generator{
		Length:    15 * time.Minute,
		Frequency: 15 * time.Minute,
		Now:       day(0, 0),
	}
	ranges := []daterange.Range{{Start: day(9, 0), End: day(10, 0)}}

	first := g.Collect(ranges)
	second := g.Collect(ranges)
	if len(first) != len(second) {
		t.Fatalf("sequence is not restartable: %d vs %d", len(first), len(second))
	}
}

func TestSequence_EarlyStop(t *testing.T) {
	g := Generator{
		Length:    15 * time.Minute,
		Frequency: 15 * time.Minute,
		Now:       day(0, 0),
	}
	ranges := []daterange.Range{{Start: day(9, 0), End: day(17, 0)}}

	n := 0
	for range g.Sequence(ranges) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Fatalf("expected early termination after 3 slots, got %d", n)
	}
}

func TestSequence_InvalidConfig(t *testing.T) {
	g := Generator{Length: 0, Frequency: 15 * time.Minute}
	if got := g.Collect([]daterange.Range{{Start: day(9, 0), End: day(10, 0)}}); got != nil {
		t.Fatalf("expected no slots for zero length, got %v", got)
	}
}
