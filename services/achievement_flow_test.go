package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAllTimeDeficitDefaultsMetabolism(t *testing.T) {
	pool := setupTestDB(t)

	users := NewUserService(pool)
	notifications := NewNotificationService(pool)
	achievements := NewAchievementService(pool, notifications)

	u := createTestUser(t, users)
	ctx := context.Background()

	// Two past days at 1500 kcal each, no body analysis on file. The 2000 kcal
	// default applies, so each day contributes a 500 kcal deficit.
	for _, daysAgo := range []int{3, 2} {
		date := time.Now().UTC().AddDate(0, 0, -daysAgo).Format("2006-01-02")
		_, err := pool.Exec(ctx, `
			INSERT INTO meal_logs (id, user_id, date, meal_type, name, calories, protein, fat, carbs, created_at)
			VALUES ($1, $2, $3, 'dinner', 'Test dinner', 1500, 0, 0, 0, NOW())
		`, uuid.New(), u.ID, date)
		if err != nil {
			t.Fatalf("failed to insert meal log: %v", err)
		}
	}

	total, err := achievements.allTimeDeficit(ctx, u.ID)
	if err != nil {
		t.Fatalf("allTimeDeficit failed: %v", err)
	}
	if total != 1000 {
		t.Errorf("deficit without analysis = %d, want 1000 (2 days at 2000-1500)", total)
	}

	// Once a measurement exists its metabolism governs every day uniformly,
	// including days logged before the measurement.
	_, err = pool.Exec(ctx, `
		INSERT INTO body_analyses (id, user_id, timestamp, height_cm, weight_kg, fat_mass_kg, muscle_mass_kg,
		                           metabolism, muscle_pct, body_water_pct, visceral_fat_rating, bmi)
		VALUES ($1, $2, NOW(), 180, 80, 20, 35, 1800, 44, 55, 8, 24.7)
	`, uuid.New(), u.ID)
	if err != nil {
		t.Fatalf("failed to insert body analysis: %v", err)
	}

	total, err = achievements.allTimeDeficit(ctx, u.ID)
	if err != nil {
		t.Fatalf("allTimeDeficit after analysis failed: %v", err)
	}
	if total != 600 {
		t.Errorf("deficit with analysis = %d, want 600 (2 days at 1800-1500)", total)
	}
}
