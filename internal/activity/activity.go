package activity

import (
	"time"

	"github.com/google/uuid"
)

// Record is one day's synced activity. One row per (user, date); a later sync
// for the same day overwrites the earlier value because wearables report a
// running daily total, not increments.
type Record struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Date        time.Time `json:"date" db:"date"`
	Steps       int       `json:"steps" db:"steps"`
	ActiveKcal  int       `json:"active_kcal" db:"active_kcal"`
	RestingKcal int       `json:"resting_kcal" db:"resting_kcal"`
	DistanceKm  float64   `json:"distance_km" db:"distance_km"`
	Source      string    `json:"source" db:"source"`
	SyncedAt    time.Time `json:"synced_at" db:"synced_at"`
}

type SyncRequest struct {
	Date        string  `json:"date"`
	Steps       int     `json:"steps"`
	ActiveKcal  int     `json:"active_kcal"`
	RestingKcal int     `json:"resting_kcal"`
	DistanceKm  float64 `json:"distance_km"`
	Source      string  `json:"source"`
}
