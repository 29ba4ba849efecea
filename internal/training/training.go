package training

import (
	"time"

	"github.com/google/uuid"
)

// Session is one scheduled class led by a trainer.
type Session struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TrainerID   uuid.UUID `json:"trainer_id" db:"trainer_id"`
	Title       string    `json:"title" db:"title"`
	Date        time.Time `json:"date" db:"date"`
	StartsAt    time.Time `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time `json:"ends_at" db:"ends_at"`
	Capacity    int       `json:"capacity" db:"capacity"`
	MeetingLink *string   `json:"meeting_link,omitempty" db:"meeting_link"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	SignupCount int       `json:"signup_count" db:"-"`
}

// Signup links a member to a session. CheckedInAt is set when they confirm
// attendance inside the check-in window.
type Signup struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TrainingID  uuid.UUID  `json:"training_id" db:"training_id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type CreateRequest struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	StartsAt    string  `json:"starts_at"`
	EndsAt      string  `json:"ends_at"`
	Capacity    int     `json:"capacity"`
	MeetingLink *string `json:"meeting_link"`
}
