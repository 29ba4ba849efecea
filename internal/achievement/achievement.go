package achievement

import (
	"time"

	"github.com/google/uuid"
)

// Slugs of the fixed achievement catalog. Granting is keyed on these, so they
// are part of the storage contract and must stay stable.
const (
	SlugFirstMeal     = "first_meal"
	SlugFirstTraining = "first_training"
	SlugStreak5       = "streak_5"
	SlugStreak10      = "streak_10"
	SlugFatLoss5Kg    = "fat_loss_5kg"
)

// FatLossThresholdKg is the cumulative all-time deficit (in kg of fat, at
// 7700 kcal/kg) required for the fat_loss_5kg unlock: 38,500 kcal.
const FatLossThresholdKg = 5.0

// Definition is the static metadata shown next to an unlock.
type Definition struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Catalog lists every achievement in display order.
var Catalog = []Definition{
	{SlugFirstMeal, "First Step", "Log your first meal.", "restaurant", "green"},
	{SlugFirstTraining, "Athlete", "Sign up for your first training session.", "fitness_center", "blue"},
	{SlugStreak5, "Picking Up Speed", "Keep a 5-day logging streak.", "fire", "orange"},
	{SlugStreak10, "On Fire!", "Keep a 10-day logging streak.", "bolt", "red"},
	{SlugFatLoss5Kg, "5 kg of Fat Down", "Accumulate a calorie deficit worth 5 kg of fat (38,500 kcal).", "whatshot", "purple"},
}

// UserAchievement is one granted unlock. UNIQUE (user_id, slug) in storage
// makes granting idempotent.
type UserAchievement struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Slug       string    `json:"slug" db:"slug"`
	Seen       bool      `json:"seen" db:"seen"`
	UnlockedAt time.Time `json:"unlocked_at" db:"unlocked_at"`
}

// WithStatus pairs a catalog entry with the user's unlock state for display.
type WithStatus struct {
	Definition
	Unlocked   bool       `json:"unlocked"`
	Seen       bool       `json:"seen"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// State is everything the predicates look at, loaded by the caller in one
// pass before evaluation.
type State struct {
	HasMealLog        bool
	HasTrainingSignup bool
	CurrentStreak     int
	TotalFatLossKg    float64
	Unlocked          map[string]bool
}

// Evaluate returns the slugs whose predicates hold and that are not already
// unlocked, in catalog order. It is pure; the caller persists the grants.
func Evaluate(s State) []string {
	var due []string
	add := func(slug string, ok bool) {
		if ok && !s.Unlocked[slug] {
			due = append(due, slug)
		}
	}

	add(SlugFirstMeal, s.HasMealLog)
	add(SlugFirstTraining, s.HasTrainingSignup)
	add(SlugStreak5, s.CurrentStreak >= 5)
	add(SlugStreak10, s.CurrentStreak >= 10)
	add(SlugFatLoss5Kg, s.TotalFatLossKg >= FatLossThresholdKg)

	return due
}
