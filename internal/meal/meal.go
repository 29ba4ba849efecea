package meal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Meal types accepted by the log. Breakfast, lunch and dinner form the set
// that earns the daily squad food_log award; snack never counts toward it.
const (
	TypeBreakfast = "breakfast"
	TypeLunch     = "lunch"
	TypeDinner    = "dinner"
	TypeSnack     = "snack"
)

var validTypes = map[string]bool{
	TypeBreakfast: true,
	TypeLunch:     true,
	TypeDinner:    true,
	TypeSnack:     true,
}

// ValidateType returns an error for meal types outside the fixed set.
func ValidateType(mealType string) error {
	if !validTypes[mealType] {
		return fmt.Errorf("invalid meal type %q", mealType)
	}
	return nil
}

// Log is one logged meal. At most one row per (user, date, type); re-logging
// the same slot replaces it.
type Log struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Date      time.Time `json:"date" db:"date"`
	MealType  string    `json:"meal_type" db:"meal_type"`
	Name      string    `json:"name" db:"name"`
	Calories  int       `json:"calories" db:"calories"`
	Protein   float64   `json:"protein" db:"protein"`
	Fat       float64   `json:"fat" db:"fat"`
	Carbs     float64   `json:"carbs" db:"carbs"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type LogRequest struct {
	Date     string  `json:"date"`
	MealType string  `json:"meal_type"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// LogResult is what a meal write reports back: the stored row, the
// recomputed streak, and any achievements the write unlocked.
type LogResult struct {
	Meal           *Log     `json:"meal"`
	CurrentStreak  int      `json:"current_streak"`
	NewlyUnlocked  []string `json:"newly_unlocked,omitempty"`
	FoodLogAwarded bool     `json:"food_log_awarded"`
}

// DayTotal is one day's summed intake, used by the deficit history.
type DayTotal struct {
	Date         time.Time `json:"date"`
	ConsumedKcal int       `json:"consumed_kcal"`
}
