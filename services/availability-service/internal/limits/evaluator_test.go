package limits

import (
	"context"
	"testing"
	"time"

	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/model"
)

type fakeCounter struct {
	counts map[int64]int // by userID, 0 = all users
	calls  int
}

func (f *fakeCounter) CountBookings(_ context.Context, userID, _ int64, _, _ time.Time) (int, error) {
	f.calls++
	return f.counts[userID], nil
}

func busyAt(userID int64, day time.Time, hour int, d time.Duration) BusyInterval {
	start := day.Add(time.Duration(hour) * time.Hour)
	return BusyInterval{UserID: userID, Start: start, End: start.Add(d)}
}

func TestEvaluate_DayCountLimit(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2026, 2, 2, 0, 0, 0, 0, loc)

	in := Input{
		UserIDs:     []int64{7},
		EventTypeID: 1,
		Booking:     model.BookingLimits{PerDay: 2},
		From:        monday,
		To:          monday.AddDate(0, 0, 2),
		Location:    loc,
		Busy: []BusyInterval{
			busyAt(7, monday, 9, 30*time.Minute),
			busyAt(7, monday, 11, 30*time.Minute),
		},
	}

	managers, err := Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	m := managers[7]
	if !m.Exhausted(Day, monday) {
		t.Fatal("Monday should be exhausted at 2 bookings")
	}
	if m.Exhausted(Day, monday.AddDate(0, 0, 1)) {
		t.Fatal("Tuesday has no bookings and should not be exhausted")
	}
}

func TestEvaluate_UnderLimitLeavesPeriodOpen(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2026, 2, 2, 0, 0, 0, 0, loc)

	in := Input{
		UserIDs:  []int64{7},
		Booking:  model.BookingLimits{PerDay: 3},
		From:     monday,
		To:       monday.AddDate(0, 0, 1),
		Location: loc,
		Busy: []BusyInterval{
			busyAt(7, monday, 9, 30*time.Minute),
			busyAt(7, monday, 11, 30*time.Minute),
		},
	}

	managers, err := Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if managers[7].Exhausted(Day, monday) {
		t.Fatal("2 bookings under a limit of 3 must not exhaust the day")
	}
}

func TestEvaluate_DurationLimit(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2026, 2, 2, 0, 0, 0, 0, loc)

	in := Input{
		UserIDs:  []int64{7},
		Duration: model.DurationLimits{PerDay: 2 * time.Hour},
		From:     monday,
		To:       monday.AddDate(0, 0, 1),
		Location: loc,
		Busy: []BusyInterval{
			busyAt(7, monday, 9, time.Hour),
			busyAt(7, monday, 11, time.Hour),
		},
	}

	managers, err := Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !managers[7].Exhausted(Day, monday) {
		t.Fatal("2h booked against a 2h duration limit should exhaust the day")
	}
}

func TestEvaluate_GlobalPassMergesIntoUsers(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2026, 2, 2, 0, 0, 0, 0, loc)

	// Two bookings by different users; the global pass counts both
	// against the cap even though neither user alone hits it.
	in := Input{
		UserIDs:  []int64{1, 2},
		Booking:  model.BookingLimits{PerDay: 2},
		From:     monday,
		To:       monday.AddDate(0, 0, 1),
		Location: loc,
		Busy: []BusyInterval{
			busyAt(1, monday, 9, 30*time.Minute),
			busyAt(2, monday, 11, 30*time.Minute),
		},
	}

	managers, err := Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	for _, uid := range []int64{1, 2} {
		if !managers[uid].Exhausted(Day, monday) {
			t.Fatalf("user %d should inherit global exhaustion", uid)
		}
	}
}

func TestEvaluate_YearLimitUsesLiveCounter(t *testing.T) {
	loc := time.UTC
	jan1 := time.Date(2026, 1, 1, 0, 0, 0, 0, loc)

	counter := &fakeCounter{counts: map[int64]int{0: 0, 7: 500}}
	in := Input{
		UserIDs:  []int64{7},
		Booking:  model.BookingLimits{PerYear: 500},
		From:     jan1.AddDate(0, 1, 0),
		To:       jan1.AddDate(0, 1, 7),
		Location: loc,
		Counter:  counter,
	}

	managers, err := Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !managers[7].Exhausted(Year, jan1) {
		t.Fatal("live counter at the cap should exhaust the year")
	}
	if counter.calls == 0 {
		t.Fatal("year limits must consult the live counter")
	}
}

func TestEvaluate_FinerExhaustionSkipsCoarserRecheck(t *testing.T) {
	loc := time.UTC
	monday := time.Date(2026, 2, 2, 0, 0, 0, 0, loc)

	// The day limit exhausts every day of the window, which lets the
	// evaluator stop before re-checking coarser granularities. The week
	// period therefore stays unmarked.
	in := Input{
		UserIDs:  []int64{7},
		Booking:  model.BookingLimits{PerDay: 1, PerWeek: 10},
		From:     monday,
		To:       monday.AddDate(0, 0, 1),
		Location: loc,
		Busy: []BusyInterval{
			busyAt(7, monday, 9, 30*time.Minute),
		},
	}

	managers, err := Evaluate(context.Background(), in)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	m := managers[7]
	if !m.Exhausted(Day, monday) {
		t.Fatal("day should be exhausted")
	}
	if m.Exhausted(Week, PeriodStart(Week, monday, loc)) {
		t.Fatal("week is under its own limit and must stay open")
	}
}
