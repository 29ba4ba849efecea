package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"kiloFitAPI/internal/progress"
	"kiloFitAPI/internal/squad"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SquadService struct {
	db       *pgxpool.Pool
	users    *UserService
	progress *ProgressService
}

func NewSquadService(db *pgxpool.Pool, users *UserService, progress *ProgressService) *SquadService {
	return &SquadService{db: db, users: users, progress: progress}
}

func (s *SquadService) CreateSquad(ctx context.Context, clerkID, name, description string) (*squad.Squad, error) {
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
		return nil, fmt.Errorf("only trainers can create squads")
	}
	if name == "" {
		return nil, fmt.Errorf("squad name is required")
	}

	sq := &squad.Squad{ID: uuid.New(), Name: name, TrainerID: trainerID}
	if description != "" {
		sq.Description = &description
	}

	query := `
	INSERT INTO squads (id, name, description, trainer_id, created_at)
	VALUES ($1, $2, $3, $4, NOW())
	RETURNING created_at
	`
	if err := s.db.QueryRow(ctx, query, sq.ID, sq.Name, sq.Description, sq.TrainerID).Scan(&sq.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create squad: %w", err)
	}

	// The trainer is a member of their own squad.
	_, err = s.db.Exec(ctx, `
		INSERT INTO squad_members (squad_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (squad_id, user_id) DO NOTHING
	`, sq.ID, trainerID)
	if err != nil {
		log.Printf("Failed to add trainer %s to squad %s: %v", trainerID, sq.ID, err)
	}

	return sq, nil
}

func (s *SquadService) Join(ctx context.Context, clerkID string, squadID uuid.UUID) error {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM squads WHERE id = $1)`, squadID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check squad: %w", err)
	}
	if !exists {
		return fmt.Errorf("squad not found")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO squad_members (squad_id, user_id, joined_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (squad_id, user_id) DO NOTHING
	`, squadID, userID)
	if err != nil {
		return fmt.Errorf("failed to join squad: %w", err)
	}
	return nil
}

// AwardFoodLog grants the daily 10 points in every squad the user belongs to,
// once the breakfast/lunch/dinner set is complete. The dedup key in the
// description plus the ledger's unique constraint make re-sends no-ops, so a
// fourth meal that day cannot double-award.
func (s *SquadService) AwardFoodLog(ctx context.Context, userID uuid.UUID, date time.Time, mealTypes []string, currentStreak int) (bool, error) {
	if !squad.MealSetComplete(mealTypes) {
		return false, nil
	}

	points := squad.ApplyStreakBonus(squad.FoodLogPoints, currentStreak)
	description := fmt.Sprintf("Full day of meals on %s", date.Format("2006-01-02"))

	return s.award(ctx, userID, squad.CategoryFoodLog, points, description)
}

// AwardHealthyProgress grants the weekly 30 points for a weigh-in inside the
// healthy loss band. Deduped per Mon-Sun week via the description key.
func (s *SquadService) AwardHealthyProgress(ctx context.Context, userID uuid.UUID, previousKg, newKg float64, at time.Time) (bool, error) {
	if !squad.HealthyWeightChange(previousKg, newKg) {
		return false, nil
	}

	currentStreak, err := s.cachedStreak(ctx, userID)
	if err != nil {
		return false, err
	}

	weekStart, _ := squad.WeekBounds(at)
	points := squad.ApplyStreakBonus(squad.HealthyProgressPoints, currentStreak)
	description := fmt.Sprintf("Healthy weigh-in for week of %s", weekStart.Format("2006-01-02"))

	return s.award(ctx, userID, squad.CategoryHealthyProgress, points, description)
}

// AwardWorkout grants 50 points for a training check-in, deduped per training
// session via the description key.
func (s *SquadService) AwardWorkout(ctx context.Context, userID, trainingID uuid.UUID) (bool, error) {
	currentStreak, err := s.cachedStreak(ctx, userID)
	if err != nil {
		return false, err
	}

	points := squad.ApplyStreakBonus(squad.WorkoutPoints, currentStreak)
	description := fmt.Sprintf("Checked in to training %s", trainingID)

	return s.award(ctx, userID, squad.CategoryWorkout, points, description)
}

// award appends one ledger row per squad membership. The UNIQUE
// (user_id, squad_id, category, description) constraint carries all the
// once-per-day / once-per-week / once-per-training rules.
func (s *SquadService) award(ctx context.Context, userID uuid.UUID, category squad.Category, points int, description string) (bool, error) {
	squadIDs, err := s.membershipIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(squadIDs) == 0 {
		return false, nil
	}

	awarded := false
	for _, squadID := range squadIDs {
		tag, err := s.db.Exec(ctx, `
			INSERT INTO squad_score_logs (id, user_id, squad_id, points, category, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			ON CONFLICT (user_id, squad_id, category, description) DO NOTHING
		`, uuid.New(), userID, squadID, points, category, description)
		if err != nil {
			log.Printf("Failed to award %s points to user %s in squad %s: %v", category, userID, squadID, err)
			continue
		}
		if tag.RowsAffected() > 0 {
			awarded = true
		}
	}

	return awarded, nil
}

// Leaderboard aggregates the week's ledger fresh on every read and attaches
// each member's capped fat-loss projection.
func (s *SquadService) Leaderboard(ctx context.Context, clerkID string, squadID uuid.UUID, week time.Time) ([]squad.LeaderboardEntry, error) {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var member bool
	err = s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM squad_members WHERE squad_id = $1 AND user_id = $2)
	`, squadID, userID).Scan(&member)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, fmt.Errorf("not a member of this squad")
	}

	weekStart, weekEnd := squad.WeekBounds(week)

	query := `
	SELECT u.id, u.username, u.image_url, COALESCE(SUM(l.points), 0)::int AS total,
	       RANK() OVER (ORDER BY COALESCE(SUM(l.points), 0) DESC) AS rank
	FROM squad_members m
	JOIN users u ON u.id = m.user_id
	LEFT JOIN squad_score_logs l
		ON l.user_id = m.user_id
		AND l.squad_id = m.squad_id
		AND l.created_at >= $2
		AND l.created_at < $3
	WHERE m.squad_id = $1
	GROUP BY u.id, u.username, u.image_url
	ORDER BY total DESC, u.username ASC
	`

	rows, err := s.db.Query(ctx, query, squadID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []squad.LeaderboardEntry
	for rows.Next() {
		var e squad.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.ImageURL, &e.TotalPoints, &e.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	return entries, nil
}

// MemberProjections returns the capped fat-loss projection per member, shown
// next to the weekly points.
func (s *SquadService) MemberProjections(ctx context.Context, squadID uuid.UUID) (map[uuid.UUID]*progress.Report, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id FROM squad_members WHERE squad_id = $1`, squadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	var memberIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		memberIDs = append(memberIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}

	reports := make(map[uuid.UUID]*progress.Report, len(memberIDs))
	for _, id := range memberIDs {
		report, err := s.progress.ProjectForUser(ctx, id, true)
		if err != nil {
			log.Printf("Failed to project progress for member %s: %v", id, err)
			continue
		}
		reports[id] = report
	}

	return reports, nil
}

func (s *SquadService) membershipIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `SELECT squad_id FROM squad_members WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load memberships: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SquadService) cachedStreak(ctx context.Context, userID uuid.UUID) (int, error) {
	var current int
	if err := s.db.QueryRow(ctx, `SELECT current_streak FROM users WHERE id = $1`, userID).Scan(&current); err != nil {
		return 0, fmt.Errorf("failed to read cached streak: %w", err)
	}
	return current, nil
}
