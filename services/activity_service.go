package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kiloFitAPI/internal/activity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityService struct {
	db    *pgxpool.Pool
	users *UserService
}

func NewActivityService(db *pgxpool.Pool, users *UserService) *ActivityService {
	return &ActivityService{db: db, users: users}
}

// SyncActivity replaces the day's record. Wearables report running daily
// totals, so the latest sync always wins.
func (s *ActivityService) SyncActivity(ctx context.Context, clerkID string, req *activity.SyncRequest) (*activity.Record, error) {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	if req.ActiveKcal < 0 || req.Steps < 0 {
		return nil, fmt.Errorf("activity values must not be negative")
	}

	rec := &activity.Record{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        date,
		Steps:       req.Steps,
		ActiveKcal:  req.ActiveKcal,
		RestingKcal: req.RestingKcal,
		DistanceKm:  req.DistanceKm,
		Source:      req.Source,
	}

	query := `
	INSERT INTO activities (id, user_id, date, steps, active_kcal, resting_kcal, distance_km, source, synced_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	ON CONFLICT (user_id, date) DO UPDATE SET
		steps = EXCLUDED.steps,
		active_kcal = EXCLUDED.active_kcal,
		resting_kcal = EXCLUDED.resting_kcal,
		distance_km = EXCLUDED.distance_km,
		source = EXCLUDED.source,
		synced_at = NOW()
	RETURNING id, synced_at
	`

	err = s.db.QueryRow(ctx, query, rec.ID, rec.UserID, rec.Date, rec.Steps, rec.ActiveKcal, rec.RestingKcal, rec.DistanceKm, rec.Source).
		Scan(&rec.ID, &rec.SyncedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sync activity: %w", err)
	}

	return rec, nil
}

func (s *ActivityService) GetByDate(ctx context.Context, clerkID string, date time.Time) (*activity.Record, error) {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, date, steps, active_kcal, resting_kcal, distance_km, source, synced_at
	FROM activities
	WHERE user_id = $1 AND date = $2
	`

	rec := &activity.Record{}
	err = s.db.QueryRow(ctx, query, userID, date).Scan(
		&rec.ID, &rec.UserID, &rec.Date, &rec.Steps, &rec.ActiveKcal,
		&rec.RestingKcal, &rec.DistanceKm, &rec.Source, &rec.SyncedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	return rec, nil
}
