package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	ClerkID               string     `json:"clerkId" db:"clerk_id"`
	Email                 string     `json:"email" db:"email"`
	Username              string     `json:"username" db:"username"`
	FirstName             string     `json:"firstName" db:"first_name"`
	LastName              string     `json:"lastName" db:"last_name"`
	ImageURL              string     `json:"imageUrl,omitempty" db:"image_url"`
	EmailVerified         bool       `json:"emailVerified" db:"email_verified"`
	Sex                   *string    `json:"sex,omitempty" db:"sex"`
	DateOfBirth           *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	IsTrainer             bool       `json:"isTrainer" db:"is_trainer"`
	FatMassGoal           *float64   `json:"fatMassGoal,omitempty" db:"fat_mass_goal"`
	MuscleMassGoal        *float64   `json:"muscleMassGoal,omitempty" db:"muscle_mass_goal"`
	InitialBodyAnalysisID *uuid.UUID `json:"initialBodyAnalysisId,omitempty" db:"initial_body_analysis_id"`
	CurrentStreak         int        `json:"currentStreak" db:"current_streak"`
	NotifyMeals           bool       `json:"notifyMeals" db:"notify_meals"`
	FCMDeviceToken        *string    `json:"-" db:"fcm_device_token"`
	CreatedAt             time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" db:"updated_at"`
}

type CreateUserRequest struct {
	ClerkID   string `json:"clerkId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ImageURL  string `json:"imageUrl"`
}

type UpdateProfileRequest struct {
	Username  string  `json:"username"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	ImageURL  string  `json:"imageUrl"`
	Sex       *string `json:"sex"`
}

type UpdateGoalsRequest struct {
	FatMassGoal    *float64 `json:"fat_mass_goal"`
	MuscleMassGoal *float64 `json:"muscle_mass_goal"`
}

type RegisterDeviceRequest struct {
	Token string `json:"token"`
}
