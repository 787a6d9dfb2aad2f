package daterange

import (
	"testing"
	"time"
)

func utc(h, m int) time.Time {
	return time.Date(2026, 2, 2, h, m, 0, 0, time.UTC)
}

func TestMerge_CollapsesOverlapAndTouch(t *testing.T) {
	out := Merge([]Range{
		{Start: utc(9, 0), End: utc(10, 0)},
		{Start: utc(9, 30), End: utc(11, 0)},
		{Start: utc(11, 0), End: utc(12, 0)},
		{Start: utc(14, 0), End: utc(15, 0)},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 merged ranges, got %d", len(out))
	}
	if !out[0].Start.Equal(utc(9, 0)) || !out[0].End.Equal(utc(12, 0)) {
		t.Fatalf("unexpected first range: %v", out[0])
	}
	if !out[1].Start.Equal(utc(14, 0)) {
		t.Fatalf("unexpected second range: %v", out[1])
	}
}

func TestMerge_DropsInvalid(t *testing.T) {
	out := Merge([]Range{{Start: utc(10, 0), End: utc(10, 0)}})
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %v", out)
	}
}

func TestSubtract_SplitsAroundBusy(t *testing.T) {
	free := []Range{{Start: utc(9, 0), End: utc(12, 0)}}
	busy := []Range{{Start: utc(10, 0), End: utc(10, 30)}}

	out := Subtract(free, busy)
	if len(out) != 2 {
		t.Fatalf("expected 2 ranges, got %d: %v", len(out), out)
	}
	if !out[0].End.Equal(utc(10, 0)) {
		t.Fatalf("expected first range to end 10:00, got %v", out[0].End)
	}
	if !out[1].Start.Equal(utc(10, 30)) {
		t.Fatalf("expected second range to start 10:30, got %v", out[1].Start)
	}
}

func TestSubtract_BusyCoversAll(t *testing.T) {
	free := []Range{{Start: utc(9, 0), End: utc(10, 0)}}
	busy := []Range{{Start: utc(8, 0), End: utc(11, 0)}}
	if out := Subtract(free, busy); len(out) != 0 {
		t.Fatalf("expected no free time, got %v", out)
	}
}

func TestIntersect(t *testing.T) {
	a := []Range{{Start: utc(9, 0), End: utc(12, 0)}}
	b := []Range{{Start: utc(10, 0), End: utc(11, 0)}, {Start: utc(13, 0), End: utc(14, 0)}}

	out := Intersect(a, b)
	if len(out) != 1 {
		t.Fatalf("expected 1 range, got %d", len(out))
	}
	if !out[0].Start.Equal(utc(10, 0)) || !out[0].End.Equal(utc(11, 0)) {
		t.Fatalf("unexpected intersection: %v", out[0])
	}
}

func TestClamp(t *testing.T) {
	out := Clamp([]Range{
		{Start: utc(8, 0), End: utc(10, 0)},
		{Start: utc(16, 0), End: utc(18, 0)},
	}, utc(9, 0), utc(17, 0))
	if len(out) != 2 {
		t.Fatalf("expected 2 ranges, got %d", len(out))
	}
	if !out[0].Start.Equal(utc(9, 0)) {
		t.Fatalf("expected clamp to 09:00, got %v", out[0].Start)
	}
	if !out[1].End.Equal(utc(17, 0)) {
		t.Fatalf("expected clamp to 17:00, got %v", out[1].End)
	}
}
