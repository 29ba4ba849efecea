package streak

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func days(ss ...string) []time.Time {
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		out[i] = day(s)
	}
	return out
}

func TestCalculate(t *testing.T) {
	today := day("2026-08-28")

	tests := []struct {
		name  string
		dates []time.Time
		want  int
	}{
		{"no logs", nil, 0},
		{"logged today only", days("2026-08-28"), 1},
		{"logged yesterday only, grace keeps it alive", days("2026-08-27"), 1},
		{"latest two days ago, streak lapsed", days("2026-08-26", "2026-08-25"), 0},
		{"three consecutive ending today", days("2026-08-28", "2026-08-27", "2026-08-26"), 3},
		{"three consecutive ending yesterday", days("2026-08-27", "2026-08-26", "2026-08-25"), 3},
		{"gap breaks the walk", days("2026-08-28", "2026-08-27", "2026-08-25", "2026-08-24"), 2},
		{"old history beyond a gap is ignored", days("2026-08-28", "2026-08-20"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Calculate(tt.dates, today); got != tt.want {
				t.Errorf("Calculate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateRecomputeMatchesIncrement(t *testing.T) {
	// Recomputing after each day's log must agree with what a day-by-day
	// increment would produce, including across the grace day.
	today := day("2026-08-28")
	history := days("2026-08-28", "2026-08-27", "2026-08-26", "2026-08-25")

	for i := 1; i <= len(history); i++ {
		recent := history[len(history)-i:]
		if got := Calculate(recent, recent[0]); got != i {
			t.Fatalf("after %d consecutive days got streak %d", i, got)
		}
	}

	if got := Calculate(history, today); got != 4 {
		t.Errorf("full history = %d, want 4", got)
	}
}

func TestCalculateIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2026, 8, 28, 23, 50, 0, 0, time.UTC)
	dates := []time.Time{
		time.Date(2026, 8, 28, 0, 5, 0, 0, time.UTC),
		time.Date(2026, 8, 27, 13, 0, 0, 0, time.UTC),
	}
	if got := Calculate(dates, today); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}
