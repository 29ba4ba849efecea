package progress

import (
	"time"

	"kiloFitAPI/internal/energy"
)

// Snapshot carries the fields of a body-composition measurement the projector
// needs. Timestamp is the precise wall-clock moment of the measurement, not
// just the calendar day.
type Snapshot struct {
	Timestamp  time.Time
	FatMassKg  float64
	Metabolism int
}

// DayEnergy is one calendar day's intake and activity inside the projection
// window. The measurement-day adjustment (see ApplyMeasurementDayRule) must
// already be applied to the first day of the window.
type DayEnergy struct {
	ConsumedKcal int
	ActiveKcal   int
}

// Report is the view-ready projection result.
type Report struct {
	Percentage    float64 `json:"percentage"`
	BurnedKg      float64 `json:"burned_kg"`
	TotalToLoseKg float64 `json:"total_to_lose_kg"`
	InitialKg     float64 `json:"initial_kg"`
	GoalKg        float64 `json:"goal_kg"`
	CurrentKg     float64 `json:"current_kg"`
}

// ApplyMeasurementDayRule adjusts the snapshot-day energy record: only
// calories consumed after the measurement count, and active burn is dropped
// entirely because activity syncs carry no intra-day timing.
func ApplyMeasurementDayRule(day DayEnergy, consumedBeforeSnapshot int) DayEnergy {
	day.ConsumedKcal -= consumedBeforeSnapshot
	if day.ConsumedKcal < 0 {
		day.ConsumedKcal = 0
	}
	day.ActiveKcal = 0
	return day
}

// AccumulateDeficit sums the positive-only daily deficits over the projection
// window using the latest measurement's BMR as the fixed baseline.
func AccumulateDeficit(bmr int, days []DayEnergy) int {
	total := 0
	for _, d := range days {
		total += energy.DailyDeficit(bmr, d.ActiveKcal, d.ConsumedKcal)
	}
	return total
}

// Project blends the last measured fat mass with the deficit accumulated
// since that measurement into a percentage toward the fat-mass goal. It
// returns nil when the inputs cannot produce a meaningful result: missing
// baseline or latest snapshot, no goal, or a goal that is not a reduction
// from the baseline. This is the profile-page variant: the projected burn is
// not capped, only the final percentage is clamped to [0, 100].
func Project(baseline, latest *Snapshot, goalKg *float64, days []DayEnergy) *Report {
	return project(baseline, latest, goalKg, days, false)
}

// ProjectCapped is the squad-leaderboard variant: identical math, but the
// projected burn since the last measurement is capped at the total remaining
// to lose, so a member is never shown past their goal.
func ProjectCapped(baseline, latest *Snapshot, goalKg *float64, days []DayEnergy) *Report {
	return project(baseline, latest, goalKg, days, true)
}

func project(baseline, latest *Snapshot, goalKg *float64, days []DayEnergy, capAtGoal bool) *Report {
	if baseline == nil || latest == nil || goalKg == nil {
		return nil
	}
	if baseline.FatMassKg <= *goalKg || latest.FatMassKg <= 0 {
		return nil
	}

	totalToLose := baseline.FatMassKg - *goalKg

	deficit := AccumulateDeficit(latest.Metabolism, days)
	burnedSinceMeasurement := energy.AccumulatedDeficitKg(deficit)
	if capAtGoal && burnedSinceMeasurement > totalToLose {
		burnedSinceMeasurement = totalToLose
	}

	currentKg := latest.FatMassKg - burnedSinceMeasurement
	lostSoFar := baseline.FatMassKg - currentKg

	percentage := 0.0
	if totalToLose > 0 {
		percentage = lostSoFar / totalToLose * 100
	}
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	return &Report{
		Percentage:    percentage,
		BurnedKg:      lostSoFar,
		TotalToLoseKg: totalToLose,
		InitialKg:     baseline.FatMassKg,
		GoalKg:        *goalKg,
		CurrentKg:     currentKg,
	}
}

// WindowDays returns how many calendar days the projection window spans, from
// the snapshot's date through today inclusive. Zero means the snapshot is
// from the future (clock skew); callers should treat that as an empty window.
func WindowDays(snapshotAt, today time.Time) int {
	start := time.Date(snapshotAt.Year(), snapshotAt.Month(), snapshotAt.Day(), 0, 0, 0, 0, snapshotAt.Location())
	end := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	delta := int(end.Sub(start).Hours() / 24)
	if delta < 0 {
		return 0
	}
	return delta + 1
}
