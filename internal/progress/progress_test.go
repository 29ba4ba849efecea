package progress

import (
	"math"
	"testing"
	"time"
)

func snap(fatKg float64, bmr int) *Snapshot {
	return &Snapshot{Timestamp: time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC), FatMassKg: fatKg, Metabolism: bmr}
}

func goal(v float64) *float64 { return &v }

func TestProjectWorkedExample(t *testing.T) {
	// Six days at a 700 kcal deficit against a 10 kg total: 4200/7700 kg
	// burned, about 5.45% of the way.
	days := make([]DayEnergy, 6)
	for i := range days {
		days[i] = DayEnergy{ConsumedKcal: 1500, ActiveKcal: 400} // bmr 1800 -> 700/day
	}

	baseline := snap(25, 1800)
	latest := snap(25, 1800)
	r := Project(baseline, latest, goal(15), days)
	if r == nil {
		t.Fatal("expected a report")
	}

	wantBurned := 4200.0 / 7700.0
	if math.Abs(r.BurnedKg-wantBurned) > 1e-9 {
		t.Errorf("BurnedKg = %v, want %v", r.BurnedKg, wantBurned)
	}
	wantPct := wantBurned / 10 * 100
	if math.Abs(r.Percentage-wantPct) > 1e-9 {
		t.Errorf("Percentage = %v, want %v", r.Percentage, wantPct)
	}
	if r.TotalToLoseKg != 10 {
		t.Errorf("TotalToLoseKg = %v, want 10", r.TotalToLoseKg)
	}
}

func TestProjectNilOnMissingInputs(t *testing.T) {
	b, l := snap(25, 1800), snap(24, 1800)
	if Project(nil, l, goal(15), nil) != nil {
		t.Error("nil baseline should yield no report")
	}
	if Project(b, nil, goal(15), nil) != nil {
		t.Error("nil latest should yield no report")
	}
	if Project(b, l, nil, nil) != nil {
		t.Error("missing goal should yield no report")
	}
	if Project(snap(15, 1800), l, goal(15), nil) != nil {
		t.Error("goal not below baseline should yield no report")
	}
	if Project(b, snap(0, 1800), goal(15), nil) != nil {
		t.Error("non-positive latest fat mass should yield no report")
	}
}

func TestProjectPercentageClamped(t *testing.T) {
	// A huge deficit pushes the uncapped projection past the goal; the
	// percentage still reads 100, and burned kg keeps the true figure.
	days := []DayEnergy{{ConsumedKcal: 0, ActiveKcal: 80000}} // ~10.4 kg in one day
	r := Project(snap(25, 1800), snap(16, 1800), goal(15), days)
	if r == nil {
		t.Fatal("expected a report")
	}
	if r.Percentage != 100 {
		t.Errorf("Percentage = %v, want clamp at 100", r.Percentage)
	}
	if r.BurnedKg <= r.TotalToLoseKg {
		t.Errorf("uncapped BurnedKg = %v, want past the %v total", r.BurnedKg, r.TotalToLoseKg)
	}
}

func TestProjectCappedStopsAtGoal(t *testing.T) {
	days := []DayEnergy{{ConsumedKcal: 0, ActiveKcal: 80000}}
	r := ProjectCapped(snap(25, 1800), snap(25, 1800), goal(15), days)
	if r == nil {
		t.Fatal("expected a report")
	}
	if r.Percentage != 100 {
		t.Errorf("Percentage = %v, want 100", r.Percentage)
	}
	if r.CurrentKg < r.GoalKg-1e-9 {
		t.Errorf("capped CurrentKg = %v dropped below goal %v", r.CurrentKg, r.GoalKg)
	}
	if r.BurnedKg != r.TotalToLoseKg {
		t.Errorf("capped BurnedKg = %v, want exactly the %v total", r.BurnedKg, r.TotalToLoseKg)
	}
}

func TestProjectRegainNeverNegative(t *testing.T) {
	// Latest measurement above baseline with no deficit since: clamp at 0%.
	r := Project(snap(25, 1800), snap(27, 1800), goal(15), nil)
	if r == nil {
		t.Fatal("expected a report")
	}
	if r.Percentage != 0 {
		t.Errorf("Percentage = %v, want 0", r.Percentage)
	}
}

func TestApplyMeasurementDayRule(t *testing.T) {
	got := ApplyMeasurementDayRule(DayEnergy{ConsumedKcal: 2000, ActiveKcal: 500}, 800)
	if got.ConsumedKcal != 1200 || got.ActiveKcal != 0 {
		t.Errorf("got %+v, want consumed 1200 active 0", got)
	}

	// More eaten before the scan than logged for the day clamps to zero.
	got = ApplyMeasurementDayRule(DayEnergy{ConsumedKcal: 500, ActiveKcal: 300}, 800)
	if got.ConsumedKcal != 0 || got.ActiveKcal != 0 {
		t.Errorf("got %+v, want zeros", got)
	}
}

func TestAccumulateDeficitSkipsSurplusDays(t *testing.T) {
	days := []DayEnergy{
		{ConsumedKcal: 1500, ActiveKcal: 400}, // +700
		{ConsumedKcal: 3000, ActiveKcal: 0},   // surplus, contributes 0
		{ConsumedKcal: 1800, ActiveKcal: 0},   // break-even
	}
	if got := AccumulateDeficit(1800, days); got != 700 {
		t.Errorf("AccumulateDeficit = %d, want 700", got)
	}
}

func TestWindowDays(t *testing.T) {
	at := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	today := time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC)
	if got := WindowDays(at, today); got != 6 {
		t.Errorf("WindowDays = %d, want 6", got)
	}
	if got := WindowDays(at, at); got != 1 {
		t.Errorf("same-day window = %d, want 1", got)
	}
	if got := WindowDays(today, at); got != 0 {
		t.Errorf("future snapshot window = %d, want 0", got)
	}
}
