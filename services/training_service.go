package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kiloFitAPI/internal/squad"
	"kiloFitAPI/internal/training"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TrainingService struct {
	db           *pgxpool.Pool
	users        *UserService
	achievements *AchievementService
	squads       *SquadService
}

func NewTrainingService(db *pgxpool.Pool, users *UserService, achievements *AchievementService, squads *SquadService) *TrainingService {
	return &TrainingService{db: db, users: users, achievements: achievements, squads: squads}
}

func (s *TrainingService) Create(ctx context.Context, clerkID string, req *training.CreateRequest) (*training.Session, error) {
	var trainerID uuid.UUID
	var isTrainer bool
	err := s.db.QueryRow(ctx, `SELECT id, is_trainer FROM users WHERE clerk_id = $1`, clerkID).Scan(&trainerID, &isTrainer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !isTrainer {
		return nil, fmt.Errorf("only trainers can schedule trainings")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("invalid start time %q: %w", req.StartsAt, err)
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("invalid end time %q: %w", req.EndsAt, err)
	}
	if !endsAt.After(startsAt) {
		return nil, fmt.Errorf("training must end after it starts")
	}
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if req.Capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive")
	}

	t := &training.Session{
		ID:          uuid.New(),
		TrainerID:   trainerID,
		Title:       req.Title,
		Date:        date,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Capacity:    req.Capacity,
		MeetingLink: req.MeetingLink,
	}

	query := `
	INSERT INTO trainings (id, trainer_id, title, date, starts_at, ends_at, capacity, meeting_link, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	ON CONFLICT (trainer_id, date, starts_at) DO NOTHING
	RETURNING created_at
	`

	err = s.db.QueryRow(ctx, query, t.ID, t.TrainerID, t.Title, t.Date, t.StartsAt, t.EndsAt, t.Capacity, t.MeetingLink).
		Scan(&t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("a training already exists at that time")
		}
		return nil, fmt.Errorf("failed to create training: %w", err)
	}

	return t, nil
}

// ListUpcoming returns future sessions with their signup counts.
func (s *TrainingService) ListUpcoming(ctx context.Context) ([]*training.Session, error) {
	query := `
	SELECT t.id, t.trainer_id, t.title, t.date, t.starts_at, t.ends_at, t.capacity, t.meeting_link, t.created_at,
	       COUNT(ts.user_id)::int AS signups
	FROM trainings t
	LEFT JOIN training_signups ts ON ts.training_id = t.id
	WHERE t.ends_at >= NOW()
	GROUP BY t.id
	ORDER BY t.starts_at ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainings: %w", err)
	}
	defer rows.Close()

	var out []*training.Session
	for rows.Next() {
		t := &training.Session{}
		if err := rows.Scan(&t.ID, &t.TrainerID, &t.Title, &t.Date, &t.StartsAt, &t.EndsAt,
			&t.Capacity, &t.MeetingLink, &t.CreatedAt, &t.SignupCount); err != nil {
			return nil, fmt.Errorf("failed to scan training: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trainings: %w", err)
	}

	return out, nil
}

// Signup reserves a spot and runs the achievement engine (first_training).
// The capacity check and the insert ride one transaction so two racing
// signups cannot both take the last spot.
func (s *TrainingService) Signup(ctx context.Context, clerkID string, trainingID uuid.UUID) ([]string, error) {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var capacity, taken int
	var startsAt time.Time
	err = tx.QueryRow(ctx, `
		SELECT t.capacity, t.starts_at,
		       (SELECT COUNT(*) FROM training_signups WHERE training_id = t.id)::int
		FROM trainings t
		WHERE t.id = $1
		FOR UPDATE
	`, trainingID).Scan(&capacity, &startsAt, &taken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("training not found")
		}
		return nil, fmt.Errorf("failed to load training: %w", err)
	}
	if startsAt.Before(time.Now()) {
		return nil, fmt.Errorf("training has already started")
	}
	if taken >= capacity {
		return nil, fmt.Errorf("training is full")
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO training_signups (id, training_id, user_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (training_id, user_id) DO NOTHING
	`, uuid.New(), trainingID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("already signed up")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit signup: %w", err)
	}

	unlocked, err := s.achievements.EvaluateAndGrant(ctx, userID)
	if err != nil {
		log.Printf("Failed to evaluate achievements for user %s: %v", userID, err)
	}
	return unlocked, nil
}

// CheckIn confirms attendance inside the check-in window and awards the squad
// workout points. Re-checking in is a no-op.
func (s *TrainingService) CheckIn(ctx context.Context, clerkID string, trainingID uuid.UUID) error {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	var startsAt time.Time
	err = s.db.QueryRow(ctx, `SELECT starts_at FROM trainings WHERE id = $1`, trainingID).Scan(&startsAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("training not found")
		}
		return fmt.Errorf("failed to load training: %w", err)
	}

	now := time.Now()
	if !squad.CheckInWindowOpen(startsAt, now) {
		return fmt.Errorf("check-in window is closed")
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE training_signups
		SET checked_in_at = NOW()
		WHERE training_id = $1 AND user_id = $2 AND checked_in_at IS NULL
	`, trainingID, userID)
	if err != nil {
		return fmt.Errorf("failed to check in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := s.db.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM training_signups WHERE training_id = $1 AND user_id = $2)
		`, trainingID, userID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check signup: %w", err)
		}
		if !exists {
			return fmt.Errorf("not signed up for this training")
		}
		// Already checked in; the award below is deduped anyway.
	}

	if _, err := s.squads.AwardWorkout(ctx, userID, trainingID); err != nil {
		log.Printf("Failed to award workout points for user %s: %v", userID, err)
	}

	return nil
}
