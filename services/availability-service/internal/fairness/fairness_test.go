package fairness

import (
	"testing"
	"time"
)

func TestNeedsFallback(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		earliest *time.Time
		want     bool
	}{
		{name: "no availability at all", earliest: nil, want: true},
		{name: "slot tomorrow", earliest: timePtr(now.AddDate(0, 0, 1)), want: false},
		{name: "slot exactly on the two-week mark", earliest: timePtr(now.Add(Window)), want: false},
		{name: "slot just past the two-week mark", earliest: timePtr(now.Add(Window + time.Minute)), want: true},
		{name: "slot three weeks out", earliest: timePtr(now.AddDate(0, 0, 21)), want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NeedsFallback(now, tc.earliest); got != tc.want {
				t.Fatalf("NeedsFallback = %v, want %v", got, tc.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
