package aggregate

import (
	"testing"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/daterange"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

func at(h int) time.Time {
	return time.Date(2026, 2, 2, h, 0, 0, 0, time.UTC)
}

func TestMerge_CollectiveIntersects(t *testing.T) {
	// Host A free 09:00-12:00, host B free 10:00-11:00: a collective
	// event needs both, so only 10:00-11:00 is bookable.
	hosts := []HostAvailability{
		{Ranges: []daterange.Range{{Start: at(9), End: at(12)}}},
		{Ranges: []daterange.Range{{Start: at(10), End: at(11)}}},
	}

	out := Merge(hosts, model.SchedulingCollective)
	if len(out) != 1 {
		t.Fatalf("expected 1 range, got %d: %v", len(out), out)
	}
	if !out[0].Start.Equal(at(10)) || !out[0].End.Equal(at(11)) {
		t.Fatalf("expected 10:00-11:00, got %v", out[0])
	}
}

func TestMerge_RoundRobinUnions(t *testing.T) {
	// Host A free 09:00-10:00, host B free 14:00-15:00: any host
	// suffices, so both ranges are bookable.
	hosts := []HostAvailability{
		{Ranges: []daterange.Range{{Start: at(9), End: at(10)}}},
		{Ranges: []daterange.Range{{Start: at(14), End: at(15)}}},
	}

	out := Merge(hosts, model.SchedulingRoundRobin)
	if len(out) != 2 {
		t.Fatalf("expected 2 ranges, got %d: %v", len(out), out)
	}
	if !out[0].Start.Equal(at(9)) || !out[1].Start.Equal(at(14)) {
		t.Fatalf("expected both hosts' ranges in ascending order, got %v", out)
	}
}

func TestMerge_SingleHostSubtractsBusy(t *testing.T) {
	hosts := []HostAvailability{
		{
			Ranges: []daterange.Range{{Start: at(9), End: at(12)}},
			Busy:   []daterange.Range{{Start: at(10), End: at(11)}},
		},
	}

	out := Merge(hosts, model.SchedulingSingle)
	if len(out) != 2 {
		t.Fatalf("expected busy time carved out, got %v", out)
	}
}

func TestMerge_OOOExcludedWins(t *testing.T) {
	hosts := []HostAvailability{
		{
			Ranges:      []daterange.Range{{Start: at(9), End: at(17)}},
			OOOExcluded: []daterange.Range{{Start: at(9), End: at(12)}},
		},
	}

	out := Merge(hosts, model.SchedulingSingle)
	if len(out) != 1 || !out[0].End.Equal(at(12)) {
		t.Fatalf("expected the OOO-excluded set to drive availability, got %v", out)
	}
}

func TestMerge_CollectiveNoOverlap(t *testing.T) {
	hosts := []HostAvailability{
		{Ranges: []daterange.Range{{Start: at(9), End: at(10)}}},
		{Ranges: []daterange.Range{{Start: at(11), End: at(12)}}},
	}
	if out := Merge(hosts, model.SchedulingCollective); len(out) != 0 {
		t.Fatalf("expected no availability, got %v", out)
	}
}
