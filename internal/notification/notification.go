package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAchievement      Type = "achievement"
	TypeStreakRisk       Type = "streak_risk"
	TypeTrainingReminder Type = "training_reminder"
	TypeSquadAward       Type = "squad_award"
)

type Notification struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	UserID    uuid.UUID      `json:"user_id" db:"user_id"`
	Type      Type           `json:"type" db:"type"`
	Title     string         `json:"title" db:"title"`
	Message   string         `json:"message" db:"message"`
	IsRead    bool           `json:"is_read" db:"is_read"`
	Data      map[string]any `json:"data" db:"data"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

type DeviceToken struct {
	Token    string `json:"token" db:"token"`
	Platform string `json:"platform" db:"platform"`
}
