package squad

import (
	"testing"
	"time"
)

func TestMealSetComplete(t *testing.T) {
	tests := []struct {
		name  string
		meals []string
		want  bool
	}{
		{"all three", []string{"breakfast", "lunch", "dinner"}, true},
		{"superset with snack", []string{"snack", "breakfast", "lunch", "dinner"}, true},
		{"duplicates still count once", []string{"breakfast", "breakfast", "lunch", "dinner"}, true},
		{"missing dinner", []string{"breakfast", "lunch"}, false},
		{"snacks alone", []string{"snack", "snack", "snack"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MealSetComplete(tt.meals); got != tt.want {
				t.Errorf("MealSetComplete(%v) = %v, want %v", tt.meals, got, tt.want)
			}
		})
	}
}

func TestHealthyWeightChange(t *testing.T) {
	tests := []struct {
		name       string
		prev, next float64
		want       bool
	}{
		{"loss inside band", 100, 99, true},
		{"exactly -0.1%", 100, 99.9, true},
		{"exactly -0.1% with awkward floats", 80, 79.92, true},
		{"exactly -1.5%", 100, 98.5, true},
		{"no change", 100, 100, false},
		{"loss too small", 100, 99.95, false},
		{"crash loss beyond band", 100, 98, false},
		{"any gain", 100, 100.5, false},
		{"bad previous weight", 0, 99, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HealthyWeightChange(tt.prev, tt.next); got != tt.want {
				t.Errorf("HealthyWeightChange(%v, %v) = %v, want %v", tt.prev, tt.next, got, tt.want)
			}
		})
	}
}

func TestCheckInWindowOpen(t *testing.T) {
	start := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"opens 30 min before", start.Add(-30 * time.Minute), true},
		{"31 min before is too early", start.Add(-31 * time.Minute), false},
		{"at the start", start, true},
		{"closes 90 min after", start.Add(90 * time.Minute), true},
		{"91 min after is too late", start.Add(91 * time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckInWindowOpen(start, tt.at); got != tt.want {
				t.Errorf("CheckInWindowOpen(start, %v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestApplyStreakBonus(t *testing.T) {
	tests := []struct {
		points, streak, want int
	}{
		{10, 0, 10},
		{10, 2, 10},
		{10, 3, 12},
		{30, 3, 36},
		{50, 7, 60},
		// 25 * 1.2 = 30 exactly; 13 * 1.2 = 15.6 truncates to 15.
		{25, 3, 30},
		{13, 3, 15},
	}
	for _, tt := range tests {
		if got := ApplyStreakBonus(tt.points, tt.streak); got != tt.want {
			t.Errorf("ApplyStreakBonus(%d, %d) = %d, want %d", tt.points, tt.streak, got, tt.want)
		}
	}
}

func TestWeekBounds(t *testing.T) {
	// Thursday 2026-08-27 belongs to the week of Monday the 24th.
	start, end := WeekBounds(time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want Monday the 24th", start)
	}
	if !end.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want next Monday the 31st", end)
	}

	// Sunday still belongs to the week that began the previous Monday.
	start, _ = WeekBounds(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("sunday start = %v, want Monday the 24th", start)
	}

	// Monday starts a fresh week.
	start, _ = WeekBounds(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("monday start = %v, want the same Monday", start)
	}
}
