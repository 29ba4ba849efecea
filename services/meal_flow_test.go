package services

import (
	"context"
	"os"
	"testing"
	"time"

	"kiloFitAPI/internal/meal"
	"kiloFitAPI/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupTestDB connects to the database named by DATABASE_URL. Tests that need
// it are skipped when the variable is unset, so the pure-core package tests
// stay runnable anywhere.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if err := godotenv.Load("../.env"); err != nil {
		_ = godotenv.Load()
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return pool
}

func createTestUser(t *testing.T, users *UserService) *user.User {
	t.Helper()

	ctx := context.Background()
	clerkID := "test_" + uuid.NewString()
	u, err := users.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:   clerkID,
		Email:     clerkID + "@example.com",
		Username:  "tester_" + clerkID[:8],
		FirstName: "Test",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	t.Cleanup(func() {
		_ = users.DeleteUser(context.Background(), clerkID)
	})

	return u
}

func TestLogMealRecomputesStreak(t *testing.T) {
	pool := setupTestDB(t)

	users := NewUserService(pool)
	notifications := NewNotificationService(pool)
	achievements := NewAchievementService(pool, notifications)
	progress := NewProgressService(pool, users)
	squads := NewSquadService(pool, users, progress)
	meals := NewMealService(pool, users, achievements, squads)

	u := createTestUser(t, users)
	ctx := context.Background()

	today := time.Now().UTC().Format("2006-01-02")
	result, err := meals.LogMeal(ctx, u.ClerkID, &meal.LogRequest{
		Date:     today,
		MealType: meal.TypeBreakfast,
		Name:     "Oatmeal",
		Calories: 350,
	})
	if err != nil {
		t.Fatalf("LogMeal failed: %v", err)
	}

	if result.CurrentStreak != 1 {
		t.Errorf("first meal should start a 1-day streak, got %d", result.CurrentStreak)
	}

	found := false
	for _, slug := range result.NewlyUnlocked {
		if slug == "first_meal" {
			found = true
		}
	}
	if !found {
		t.Errorf("first meal should unlock first_meal, got %v", result.NewlyUnlocked)
	}

	// Re-logging the same slot replaces it and must not re-grant.
	result, err = meals.LogMeal(ctx, u.ClerkID, &meal.LogRequest{
		Date:     today,
		MealType: meal.TypeBreakfast,
		Name:     "Bigger oatmeal",
		Calories: 500,
	})
	if err != nil {
		t.Fatalf("second LogMeal failed: %v", err)
	}
	if len(result.NewlyUnlocked) != 0 {
		t.Errorf("re-log should not unlock again, got %v", result.NewlyUnlocked)
	}
	if result.Meal.Calories != 500 {
		t.Errorf("re-log should replace calories, got %d", result.Meal.Calories)
	}
}
