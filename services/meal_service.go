package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"kiloFitAPI/internal/meal"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MealService struct {
	db           *pgxpool.Pool
	users        *UserService
	achievements *AchievementService
	squads       *SquadService
}

func NewMealService(db *pgxpool.Pool, users *UserService, achievements *AchievementService, squads *SquadService) *MealService {
	return &MealService{db: db, users: users, achievements: achievements, squads: squads}
}

// LogMeal upserts one meal slot and runs everything that hangs off a meal
// write: streak recompute, achievement evaluation and the squad food_log
// award. The meal row is the source of truth; the follow-ups are best-effort
// and never fail the request once the row is stored.
func (s *MealService) LogMeal(ctx context.Context, clerkID string, req *meal.LogRequest) (*meal.LogResult, error) {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if err := meal.ValidateType(req.MealType); err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	if req.Calories < 0 {
		return nil, fmt.Errorf("calories must not be negative")
	}

	m := &meal.Log{
		ID:       uuid.New(),
		UserID:   userID,
		Date:     date,
		MealType: req.MealType,
		Name:     req.Name,
		Calories: req.Calories,
		Protein:  req.Protein,
		Fat:      req.Fat,
		Carbs:    req.Carbs,
	}

	query := `
	INSERT INTO meal_logs (id, user_id, date, meal_type, name, calories, protein, fat, carbs, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	ON CONFLICT (user_id, date, meal_type) DO UPDATE SET
		name = EXCLUDED.name,
		calories = EXCLUDED.calories,
		protein = EXCLUDED.protein,
		fat = EXCLUDED.fat,
		carbs = EXCLUDED.carbs
	RETURNING id, created_at
	`

	err = s.db.QueryRow(ctx, query, m.ID, m.UserID, m.Date, m.MealType, m.Name, m.Calories, m.Protein, m.Fat, m.Carbs).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to log meal: %w", err)
	}

	result := &meal.LogResult{Meal: m}

	current, err := s.users.RecomputeStreak(ctx, userID)
	if err != nil {
		log.Printf("Failed to recompute streak for user %s: %v", userID, err)
	}
	result.CurrentStreak = current

	awarded, err := s.maybeAwardFoodLog(ctx, userID, date, current)
	if err != nil {
		log.Printf("Failed to award food_log points for user %s: %v", userID, err)
	}
	result.FoodLogAwarded = awarded

	unlocked, err := s.achievements.EvaluateAndGrant(ctx, userID)
	if err != nil {
		log.Printf("Failed to evaluate achievements for user %s: %v", userID, err)
	}
	result.NewlyUnlocked = unlocked

	return result, nil
}

// maybeAwardFoodLog grants the daily squad points once breakfast, lunch and
// dinner are all present for the day. Only today's completion counts;
// backfilled history earns no points.
func (s *MealService) maybeAwardFoodLog(ctx context.Context, userID uuid.UUID, date time.Time, currentStreak int) (bool, error) {
	today := time.Now().UTC().Format("2006-01-02")
	if date.Format("2006-01-02") != today {
		return false, nil
	}

	types, err := s.mealTypesOn(ctx, userID, date)
	if err != nil {
		return false, err
	}
	return s.squads.AwardFoodLog(ctx, userID, date, types, currentStreak)
}

func (s *MealService) mealTypesOn(ctx context.Context, userID uuid.UUID, date time.Time) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT meal_type FROM meal_logs WHERE user_id = $1 AND date = $2`, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load day's meal types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan meal type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *MealService) ListByDate(ctx context.Context, clerkID string, date time.Time) ([]*meal.Log, error) {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, date, meal_type, name, calories, protein, fat, carbs, created_at
	FROM meal_logs
	WHERE user_id = $1 AND date = $2
	ORDER BY CASE meal_type
		WHEN 'breakfast' THEN 1
		WHEN 'lunch' THEN 2
		WHEN 'dinner' THEN 3
		ELSE 4
	END
	`

	rows, err := s.db.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer rows.Close()

	var meals []*meal.Log
	for rows.Next() {
		m := &meal.Log{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.Date, &m.MealType, &m.Name, &m.Calories, &m.Protein, &m.Fat, &m.Carbs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read meals: %w", err)
	}

	return meals, nil
}

func (s *MealService) DeleteMeal(ctx context.Context, clerkID string, mealID uuid.UUID) error {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM meal_logs WHERE id = $1 AND user_id = $2`, mealID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("meal not found")
	}

	if _, err := s.users.RecomputeStreak(ctx, userID); err != nil {
		log.Printf("Failed to recompute streak for user %s: %v", userID, err)
	}
	return nil
}
