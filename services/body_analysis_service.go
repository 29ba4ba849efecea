package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kiloFitAPI/internal/bodyanalysis"
	"kiloFitAPI/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BodyAnalysisService struct {
	db     *pgxpool.Pool
	users  *UserService
	squads *SquadService
}

func NewBodyAnalysisService(db *pgxpool.Pool, users *UserService, squads *SquadService) *BodyAnalysisService {
	return &BodyAnalysisService{db: db, users: users, squads: squads}
}

// Create stores a scan and runs the side effects a new measurement carries:
// the first scan (or the first after a goal reset) becomes the progress
// baseline and derives a default fat-mass goal, and a weigh-in inside the
// healthy band earns the weekly squad points.
func (s *BodyAnalysisService) Create(ctx context.Context, clerkID string, req *bodyanalysis.CreateRequest) (*bodyanalysis.Analysis, error) {
	u, err := s.users.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	measuredAt := time.Now().UTC()
	if req.Timestamp != "" {
		measuredAt, err = time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", req.Timestamp, err)
		}
	}
	if req.WeightKg <= 0 || req.FatMassKg < 0 || req.Metabolism < 0 {
		return nil, fmt.Errorf("invalid measurement values")
	}

	previous, err := s.latestFor(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	a := &bodyanalysis.Analysis{
		ID:                uuid.New(),
		UserID:            u.ID,
		Timestamp:         measuredAt,
		HeightCm:          req.HeightCm,
		WeightKg:          req.WeightKg,
		FatMassKg:         req.FatMassKg,
		MuscleMassKg:      req.MuscleMassKg,
		Metabolism:        req.Metabolism,
		MusclePct:         req.MusclePct,
		BodyWaterPct:      req.BodyWaterPct,
		VisceralFatRating: req.VisceralFatRating,
		BMI:               req.BMI,
		Commentary:        req.Commentary,
	}

	query := `
	INSERT INTO body_analyses (id, user_id, timestamp, height_cm, weight_kg, fat_mass_kg, muscle_mass_kg,
	                           metabolism, muscle_pct, body_water_pct, visceral_fat_rating, bmi, commentary)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = s.db.Exec(ctx, query, a.ID, a.UserID, a.Timestamp, a.HeightCm, a.WeightKg, a.FatMassKg,
		a.MuscleMassKg, a.Metabolism, a.MusclePct, a.BodyWaterPct, a.VisceralFatRating, a.BMI, a.Commentary)
	if err != nil {
		return nil, fmt.Errorf("failed to store body analysis: %w", err)
	}

	if u.InitialBodyAnalysisID == nil {
		s.setBaseline(ctx, u, a)
	}

	if previous != nil {
		if _, err := s.squads.AwardHealthyProgress(ctx, u.ID, previous.WeightKg, a.WeightKg, measuredAt); err != nil {
			log.Printf("Failed to award healthy_progress for user %s: %v", u.ID, err)
		}
	}

	return a, nil
}

// setBaseline pins this analysis as the progress baseline and fills in a
// default fat-mass goal if the user never set one. Best-effort: the scan is
// already stored, a failed baseline write just gets picked up by the next one.
func (s *BodyAnalysisService) setBaseline(ctx context.Context, u *user.User, a *bodyanalysis.Analysis) {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET initial_body_analysis_id = $2, updated_at = NOW()
		WHERE id = $1 AND initial_body_analysis_id IS NULL
	`, u.ID, a.ID)
	if err != nil {
		log.Printf("Failed to set baseline analysis for user %s: %v", u.ID, err)
		return
	}

	if u.FatMassGoal == nil {
		sex := ""
		if u.Sex != nil {
			sex = *u.Sex
		}
		goal := bodyanalysis.DefaultFatMassGoal(a.WeightKg, a.FatMassKg, sex)
		_, err := s.db.Exec(ctx, `
			UPDATE users SET fat_mass_goal = $2, updated_at = NOW()
			WHERE id = $1 AND fat_mass_goal IS NULL
		`, u.ID, goal)
		if err != nil {
			log.Printf("Failed to set default fat-mass goal for user %s: %v", u.ID, err)
		}
	}
}

func (s *BodyAnalysisService) List(ctx context.Context, clerkID string) ([]*bodyanalysis.Analysis, error) {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, timestamp, height_cm, weight_kg, fat_mass_kg, muscle_mass_kg,
	       metabolism, muscle_pct, body_water_pct, visceral_fat_rating, bmi, commentary
	FROM body_analyses
	WHERE user_id = $1
	ORDER BY timestamp DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list body analyses: %w", err)
	}
	defer rows.Close()

	var out []*bodyanalysis.Analysis
	for rows.Next() {
		a := &bodyanalysis.Analysis{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Timestamp, &a.HeightCm, &a.WeightKg, &a.FatMassKg,
			&a.MuscleMassKg, &a.Metabolism, &a.MusclePct, &a.BodyWaterPct, &a.VisceralFatRating, &a.BMI, &a.Commentary); err != nil {
			return nil, fmt.Errorf("failed to scan body analysis: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read body analyses: %w", err)
	}

	return out, nil
}

// UpdateCommentary changes the trainer's note on a scan. Commentary is the
// only mutable field; the measurements themselves are immutable history.
func (s *BodyAnalysisService) UpdateCommentary(ctx context.Context, clerkID string, analysisID uuid.UUID, commentary string) error {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `UPDATE body_analyses SET commentary = $3 WHERE id = $1 AND user_id = $2`, analysisID, userID, commentary)
	if err != nil {
		return fmt.Errorf("failed to update commentary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("body analysis not found")
	}
	return nil
}

func (s *BodyAnalysisService) latestFor(ctx context.Context, userID uuid.UUID) (*bodyanalysis.Analysis, error) {
	a := &bodyanalysis.Analysis{}
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, timestamp, weight_kg, fat_mass_kg, metabolism
		FROM body_analyses
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`, userID).Scan(&a.ID, &a.UserID, &a.Timestamp, &a.WeightKg, &a.FatMassKg, &a.Metabolism)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest body analysis: %w", err)
	}
	return a, nil
}
