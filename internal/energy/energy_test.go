package energy

import "testing"

func TestDailyBalance(t *testing.T) {
	tests := []struct {
		name     string
		bmr      int
		active   int
		consumed int
		want     int
	}{
		{"typical deficit day", 1800, 400, 1500, 700},
		{"surplus clamps in deficit not balance", 1800, 0, 2500, -700},
		{"zero everything", 0, 0, 0, 0},
		{"negative consumed treated as zero", 1800, 200, -500, 2000},
		{"negative active treated as zero", 1800, -300, 1500, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DailyBalance(tt.bmr, tt.active, tt.consumed)
			if got != tt.want {
				t.Errorf("DailyBalance(%d, %d, %d) = %d, want %d", tt.bmr, tt.active, tt.consumed, got, tt.want)
			}
		})
	}
}

func TestDailyDeficitNeverNegative(t *testing.T) {
	if got := DailyDeficit(1800, 0, 2500); got != 0 {
		t.Errorf("surplus day should contribute 0, got %d", got)
	}
	if got := DailyDeficit(0, 0, 0); got != 0 {
		t.Errorf("empty day should contribute 0, got %d", got)
	}
}

func TestDailyDeficitZeroBMR(t *testing.T) {
	// A missing measurement shows up as bmr=0; only active burn can produce
	// a deficit then.
	if got := DailyDeficit(0, 600, 400); got != 200 {
		t.Errorf("got %d, want 200", got)
	}
}

func TestAccumulatedDeficitKg(t *testing.T) {
	// 7700 kcal is exactly one kilogram of fat.
	if got := AccumulatedDeficitKg(7700); got != 1.0 {
		t.Errorf("AccumulatedDeficitKg(7700) = %v, want 1.0", got)
	}
	if got := AccumulatedDeficitKg(0); got != 0 {
		t.Errorf("AccumulatedDeficitKg(0) = %v, want 0", got)
	}

	// Six days at 700 kcal/day.
	got := AccumulatedDeficitKg(6 * 700)
	want := 4200.0 / 7700.0
	if diff := got - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("AccumulatedDeficitKg(4200) = %v, want %v", got, want)
	}
}
