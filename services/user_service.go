package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kiloFitAPI/internal/streak"
	"kiloFitAPI/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (clerk_id) DO UPDATE SET
		email = EXCLUDED.email,
		username = EXCLUDED.username,
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		image_url = EXCLUDED.image_url,
		updated_at = EXCLUDED.updated_at
	RETURNING id, clerk_id, email, username, first_name, last_name, image_url, email_verified, created_at, updated_at
	`

	err := s.db.QueryRow(
		ctx,
		query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified,
	       sex, date_of_birth, is_trainer, fat_mass_goal, muscle_mass_goal,
	       initial_body_analysis_id, current_streak, notify_meals, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.Sex,
		&u.DateOfBirth,
		&u.IsTrainer,
		&u.FatMassGoal,
		&u.MuscleMassGoal,
		&u.InitialBodyAnalysisID,
		&u.CurrentStreak,
		&u.NotifyMeals,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) error {
	query := `
	UPDATE users
	SET username = COALESCE(NULLIF($2, ''), username),
	    first_name = COALESCE(NULLIF($3, ''), first_name),
	    last_name = COALESCE(NULLIF($4, ''), last_name),
	    image_url = COALESCE(NULLIF($5, ''), image_url),
	    sex = COALESCE($6, sex),
	    updated_at = NOW()
	WHERE clerk_id = $1
	`

	tag, err := s.db.Exec(ctx, query, clerkID, req.Username, req.FirstName, req.LastName, req.ImageURL, req.Sex)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (s *UserService) UpdateGoals(ctx context.Context, clerkID string, req *user.UpdateGoalsRequest) error {
	query := `
	UPDATE users
	SET fat_mass_goal = COALESCE($2, fat_mass_goal),
	    muscle_mass_goal = COALESCE($3, muscle_mass_goal),
	    updated_at = NOW()
	WHERE clerk_id = $1
	`

	tag, err := s.db.Exec(ctx, query, clerkID, req.FatMassGoal, req.MuscleMassGoal)
	if err != nil {
		return fmt.Errorf("failed to update goals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

// ResetGoals clears both goals and the progress baseline. The next body
// analysis becomes the new baseline and re-derives default goals.
func (s *UserService) ResetGoals(ctx context.Context, clerkID string) error {
	query := `
	UPDATE users
	SET fat_mass_goal = NULL,
	    muscle_mass_goal = NULL,
	    initial_body_analysis_id = NULL,
	    updated_at = NOW()
	WHERE clerk_id = $1
	`

	tag, err := s.db.Exec(ctx, query, clerkID)
	if err != nil {
		return fmt.Errorf("failed to reset goals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}
	log.Printf("Deleted user with clerk_id %s", clerkID)
	return nil
}

func (s *UserService) RegisterDevice(ctx context.Context, clerkID, token string) error {
	_, err := s.db.Exec(ctx, `UPDATE users SET fcm_device_token = $2, updated_at = NOW() WHERE clerk_id = $1`, clerkID, token)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// GetStreak recomputes the streak from meal-log history and refreshes the
// cached users.current_streak. The cache is read by the squad bonus and the
// reminder worker; recomputing on read keeps it honest even when a day passed
// with no writes at all.
func (s *UserService) GetStreak(ctx context.Context, clerkID string) (int, error) {
	userID, err := s.lookupUserID(ctx, clerkID)
	if err != nil {
		return 0, err
	}
	return s.RecomputeStreak(ctx, userID)
}

func (s *UserService) RecomputeStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
	SELECT DISTINCT date
	FROM meal_logs
	WHERE user_id = $1
	ORDER BY date DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, streak.MaxHistoryDays)
	if err != nil {
		return 0, fmt.Errorf("failed to load meal dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return 0, fmt.Errorf("failed to scan meal date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read meal dates: %w", err)
	}

	// Meal dates come back as UTC midnights; compare in the same frame.
	current := streak.Calculate(dates, time.Now().UTC())

	_, err = s.db.Exec(ctx, `UPDATE users SET current_streak = $2, updated_at = NOW() WHERE id = $1`, userID, current)
	if err != nil {
		return 0, fmt.Errorf("failed to cache streak: %w", err)
	}

	return current, nil
}

func (s *UserService) lookupUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found")
		}
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return id, nil
}
