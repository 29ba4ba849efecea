package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kiloFitAPI/internal/achievement"
	"kiloFitAPI/internal/energy"
	"kiloFitAPI/internal/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AchievementService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewAchievementService(db *pgxpool.Pool, notifications *NotificationService) *AchievementService {
	return &AchievementService{db: db, notifications: notifications}
}

// ListForUser returns the full catalog with the user's unlock status merged in.
func (s *AchievementService) ListForUser(ctx context.Context, userID uuid.UUID) ([]achievement.WithStatus, error) {
	query := `
	SELECT slug, seen, unlocked_at
	FROM user_achievements
	WHERE user_id = $1
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	defer rows.Close()

	unlocked := make(map[string]*achievement.UserAchievement)
	for rows.Next() {
		ua := &achievement.UserAchievement{}
		if err := rows.Scan(&ua.Slug, &ua.Seen, &ua.UnlockedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		unlocked[ua.Slug] = ua
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read achievements: %w", err)
	}

	out := make([]achievement.WithStatus, 0, len(achievement.Catalog))
	for _, def := range achievement.Catalog {
		ws := achievement.WithStatus{Definition: def}
		if ua, ok := unlocked[def.Slug]; ok {
			ws.Unlocked = true
			ws.Seen = ua.Seen
			at := ua.UnlockedAt
			ws.UnlockedAt = &at
		}
		out = append(out, ws)
	}

	return out, nil
}

func (s *AchievementService) MarkSeen(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE user_achievements SET seen = TRUE WHERE user_id = $1 AND seen = FALSE`, userID)
	if err != nil {
		return fmt.Errorf("failed to mark achievements seen: %w", err)
	}
	return nil
}

// EvaluateAndGrant runs the unlock predicates against the user's current state
// and persists any new grants. Granting is best-effort per slug: a failed
// insert is logged and skipped, the rest of the batch still lands. The unique
// (user_id, slug) constraint makes concurrent evaluations idempotent.
func (s *AchievementService) EvaluateAndGrant(ctx context.Context, userID uuid.UUID) ([]string, error) {
	state, err := s.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	due := achievement.Evaluate(*state)
	if len(due) == 0 {
		return nil, nil
	}

	var granted []string
	for _, slug := range due {
		tag, err := s.db.Exec(ctx, `
			INSERT INTO user_achievements (id, user_id, slug, seen, unlocked_at)
			VALUES ($1, $2, $3, FALSE, NOW())
			ON CONFLICT (user_id, slug) DO NOTHING
		`, uuid.New(), userID, slug)
		if err != nil {
			log.Printf("Failed to grant achievement %s to user %s: %v", slug, userID, err)
			continue
		}
		if tag.RowsAffected() == 0 {
			// Lost the race to a concurrent evaluation; already granted.
			continue
		}
		granted = append(granted, slug)
	}

	for _, slug := range granted {
		s.notifyUnlock(ctx, userID, slug)
	}

	return granted, nil
}

func (s *AchievementService) notifyUnlock(ctx context.Context, userID uuid.UUID, slug string) {
	if s.notifications == nil {
		return
	}

	title := "Achievement unlocked!"
	message := slug
	for _, def := range achievement.Catalog {
		if def.Slug == slug {
			message = def.Title
			break
		}
	}

	if err := s.notifications.Notify(ctx, userID, notification.TypeAchievement, title, message, map[string]any{"slug": slug}); err != nil {
		log.Printf("Failed to notify user %s about %s: %v", userID, slug, err)
	}
}

func (s *AchievementService) loadState(ctx context.Context, userID uuid.UUID) (*achievement.State, error) {
	state := &achievement.State{Unlocked: make(map[string]bool)}

	query := `
	SELECT
		EXISTS (SELECT 1 FROM meal_logs WHERE user_id = $1),
		EXISTS (SELECT 1 FROM training_signups WHERE user_id = $1),
		(SELECT current_streak FROM users WHERE id = $1)
	`
	err := s.db.QueryRow(ctx, query, userID).Scan(&state.HasMealLog, &state.HasTrainingSignup, &state.CurrentStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement state: %w", err)
	}

	totalDeficit, err := s.allTimeDeficit(ctx, userID)
	if err != nil {
		return nil, err
	}
	state.TotalFatLossKg = energy.AccumulatedDeficitKg(totalDeficit)

	rows, err := s.db.Query(ctx, `SELECT slug FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load granted slugs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan granted slug: %w", err)
		}
		state.Unlocked[slug] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read granted slugs: %w", err)
	}

	return state, nil
}

// allTimeDeficit sums positive-only daily deficits over the user's whole
// history, applying the latest measurement's metabolism as a fixed baseline to
// every day. Users who never measured get the 2000 kcal default, so early
// logging still accrues toward fat_loss_5kg.
func (s *AchievementService) allTimeDeficit(ctx context.Context, userID uuid.UUID) (int, error) {
	bmr := energy.DefaultBMR
	err := s.db.QueryRow(ctx, `
		SELECT metabolism
		FROM body_analyses
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`, userID).Scan(&bmr)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to load latest metabolism: %w", err)
	}

	query := `
	WITH days AS (
		SELECT date, SUM(calories)::int AS consumed
		FROM meal_logs
		WHERE user_id = $1
		GROUP BY date
	)
	SELECT COALESCE(SUM(GREATEST(0, $2::int + COALESCE(a.active_kcal, 0) - d.consumed)), 0)::int
	FROM days d
	LEFT JOIN activities a ON a.user_id = $1 AND a.date = d.date
	`

	var total int
	if err := s.db.QueryRow(ctx, query, userID, bmr).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to compute all-time deficit: %w", err)
	}
	return total, nil
}
