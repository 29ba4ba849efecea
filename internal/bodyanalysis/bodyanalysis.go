package bodyanalysis

import (
	"time"

	"github.com/google/uuid"
)

// Default body-fat percentage targets used to derive a fat-mass goal when the
// user has not set one explicitly.
const (
	DefaultTargetPctMale   = 15.0
	DefaultTargetPctFemale = 22.0
)

// Analysis is one bioimpedance scan. Timestamp keeps the full wall-clock
// moment because the measurement-day deficit rule splits that day's meals
// around it. Commentary is the only field that may change after insert.
type Analysis struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	Timestamp         time.Time `json:"timestamp" db:"timestamp"`
	HeightCm          float64   `json:"height_cm" db:"height_cm"`
	WeightKg          float64   `json:"weight_kg" db:"weight_kg"`
	FatMassKg         float64   `json:"fat_mass_kg" db:"fat_mass_kg"`
	MuscleMassKg      float64   `json:"muscle_mass_kg" db:"muscle_mass_kg"`
	Metabolism        int       `json:"metabolism" db:"metabolism"`
	MusclePct         float64   `json:"muscle_pct" db:"muscle_pct"`
	BodyWaterPct      float64   `json:"body_water_pct" db:"body_water_pct"`
	VisceralFatRating int       `json:"visceral_fat_rating" db:"visceral_fat_rating"`
	BMI               float64   `json:"bmi" db:"bmi"`
	Commentary        *string   `json:"commentary,omitempty" db:"commentary"`
}

type CreateRequest struct {
	Timestamp         string  `json:"timestamp"`
	HeightCm          float64 `json:"height_cm"`
	WeightKg          float64 `json:"weight_kg"`
	FatMassKg         float64 `json:"fat_mass_kg"`
	MuscleMassKg      float64 `json:"muscle_mass_kg"`
	Metabolism        int     `json:"metabolism"`
	MusclePct         float64 `json:"muscle_pct"`
	BodyWaterPct      float64 `json:"body_water_pct"`
	VisceralFatRating int     `json:"visceral_fat_rating"`
	BMI               float64 `json:"bmi"`
	Commentary        *string `json:"commentary"`
}

// DefaultFatMassGoal derives a fat-mass goal from the first scan when the user
// has not set one: the fat mass they would carry at the default target body-fat
// percentage for their sex, never above their current fat mass.
func DefaultFatMassGoal(weightKg, fatMassKg float64, sex string) float64 {
	target := DefaultTargetPctFemale
	if sex == "male" {
		target = DefaultTargetPctMale
	}
	goal := weightKg * target / 100
	if goal > fatMassKg {
		goal = fatMassKg
	}
	return goal
}
