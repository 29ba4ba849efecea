package squad

import (
	"time"

	"github.com/google/uuid"
)

// Point values for the three ledger categories.
const (
	FoodLogPoints         = 10
	HealthyProgressPoints = 30
	WorkoutPoints         = 50
)

// Streak bonus: awards are multiplied by 1.2 (truncated to int) once the
// logging streak reaches 3 days. Fixed business constant, same as the
// 7700 kcal/kg ratio.
const (
	BonusStreakThreshold = 3
	bonusMultiplier      = 1.2
)

// Healthy weight-loss band for the healthy_progress award, relative to the
// immediately preceding snapshot. Exactly 0% or a drop beyond 1.5% (crash
// dieting) does not qualify; any gain does not qualify.
const (
	healthyLossMinPct = 0.1
	healthyLossMaxPct = 1.5

	// A weigh-in at exactly -0.1% must qualify even when the percentage
	// division lands a hair under (100 -> 99.9 computes to 0.0999...).
	healthyBandEpsilon = 1e-9
)

// Workout check-in window around the scheduled start.
const (
	CheckInOpensBefore = 30 * time.Minute
	CheckInClosesAfter = 90 * time.Minute
)

// Category of a score ledger row.
type Category string

const (
	CategoryFoodLog         Category = "food_log"
	CategoryHealthyProgress Category = "healthy_progress"
	CategoryWorkout         Category = "workout"
)

// Squad is a trainer-led group used for the weekly leaderboard.
type Squad struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	TrainerID   uuid.UUID `json:"trainer_id" db:"trainer_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ScoreLogEntry is one append-only ledger row. The weekly leaderboard is
// always SUM(points) over these rows, never a mutable running total.
type ScoreLogEntry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	SquadID     uuid.UUID `json:"squad_id" db:"squad_id"`
	Points      int       `json:"points" db:"points"`
	Category    Category  `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// LeaderboardEntry is one member's weekly total.
type LeaderboardEntry struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	ImageURL    string    `json:"image_url"`
	TotalPoints int       `json:"total_points"`
	Rank        int       `json:"rank"`
}

// MealSetComplete reports whether today's logged meal types cover breakfast,
// lunch and dinner. Snacks are welcome but not required.
func MealSetComplete(mealTypes []string) bool {
	seen := make(map[string]bool, len(mealTypes))
	for _, mt := range mealTypes {
		seen[mt] = true
	}
	return seen["breakfast"] && seen["lunch"] && seen["dinner"]
}

// HealthyWeightChange reports whether a new snapshot's weight relative to the
// previous one falls in the healthy loss band (-1.5% .. -0.1%).
func HealthyWeightChange(previousKg, newKg float64) bool {
	if previousKg <= 0 {
		return false
	}
	lossPct := (previousKg - newKg) / previousKg * 100
	return lossPct >= healthyLossMinPct-healthyBandEpsilon && lossPct <= healthyLossMaxPct+healthyBandEpsilon
}

// CheckInWindowOpen reports whether "at" falls inside the workout check-in
// window: 30 minutes before the scheduled start through 90 minutes after.
func CheckInWindowOpen(scheduledStart, at time.Time) bool {
	opens := scheduledStart.Add(-CheckInOpensBefore)
	closes := scheduledStart.Add(CheckInClosesAfter)
	return !at.Before(opens) && !at.After(closes)
}

// ApplyStreakBonus scales points by the 1.2 streak multiplier (truncated)
// when the user's current streak qualifies. The streak cache must be fresh at
// award time; callers recompute it on every meal write.
func ApplyStreakBonus(points, currentStreak int) int {
	if currentStreak >= BonusStreakThreshold {
		return int(float64(points) * bonusMultiplier)
	}
	return points
}

// WeekBounds returns the Monday 00:00 start and next-Monday 00:00 end of the
// ISO week containing t, in t's location. Leaderboard reads aggregate rows
// with created_at in [start, end).
func WeekBounds(t time.Time) (start, end time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started the previous Monday
	}
	start = day.AddDate(0, 0, -(weekday - 1))
	end = start.AddDate(0, 0, 7)
	return start, end
}
