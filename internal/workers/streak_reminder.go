package workers

import (
	"context"
	"log"
	"time"

	"kiloFitAPI/internal/notification"
	"kiloFitAPI/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReminderHour is the local hour at which the streak-risk check fires.
const ReminderHour = 18

// StreakReminder nudges users who logged a meal yesterday but have nothing
// for today yet: their streak survives on grace until midnight, then lapses.
type StreakReminder struct {
	db            *pgxpool.Pool
	notifications *services.NotificationService
}

func NewStreakReminder(db *pgxpool.Pool, notifications *services.NotificationService) *StreakReminder {
	return &StreakReminder{db: db, notifications: notifications}
}

// Run loops until the context is cancelled, firing the check once per day at
// ReminderHour. Crash-only: any failure is logged and the loop keeps going.
func (w *StreakReminder) Run(ctx context.Context) {
	log.Println("Streak reminder worker started")

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	var lastRun string
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			day := now.Format("2006-01-02")
			if now.Hour() != ReminderHour || lastRun == day {
				continue
			}
			lastRun = day
			w.remindAtRisk(ctx)
		case <-ctx.Done():
			log.Println("Streak reminder worker stopped")
			return
		}
	}
}

func (w *StreakReminder) remindAtRisk(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	// Users whose streak is riding on the grace day: logged yesterday, nothing
	// today, notifications on.
	query := `
	SELECT u.id, u.current_streak
	FROM users u
	WHERE u.notify_meals
	  AND EXISTS (
		SELECT 1 FROM meal_logs m
		WHERE m.user_id = u.id AND m.date = CURRENT_DATE - 1
	  )
	  AND NOT EXISTS (
		SELECT 1 FROM meal_logs m
		WHERE m.user_id = u.id AND m.date = CURRENT_DATE
	  )
	`

	rows, err := w.db.Query(ctx, query)
	if err != nil {
		log.Printf("Streak reminder: failed to find at-risk users: %v", err)
		return
	}
	defer rows.Close()

	type atRisk struct {
		id     uuid.UUID
		streak int
	}
	var users []atRisk
	for rows.Next() {
		var u atRisk
		if err := rows.Scan(&u.id, &u.streak); err != nil {
			log.Printf("Streak reminder: failed to scan user: %v", err)
			continue
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Streak reminder: failed to read at-risk users: %v", err)
		return
	}

	sent := 0
	for _, u := range users {
		if u.streak == 0 {
			continue
		}
		err := w.notifications.Notify(ctx, u.id, notification.TypeStreakRisk,
			"Your streak is at risk!",
			"Log a meal before midnight to keep your streak alive.",
			map[string]any{"current_streak": u.streak})
		if err != nil {
			log.Printf("Streak reminder: failed to notify user %s: %v", u.id, err)
			continue
		}
		sent++
	}

	log.Printf("Streak reminder: notified %d of %d at-risk users", sent, len(users))
}
