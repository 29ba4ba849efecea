package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kiloFitAPI/internal/energy"
	"kiloFitAPI/internal/progress"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProgressService struct {
	db    *pgxpool.Pool
	users *UserService
}

func NewProgressService(db *pgxpool.Pool, users *UserService) *ProgressService {
	return &ProgressService{db: db, users: users}
}

// DeficitDay is one row of the deficit history ledger.
type DeficitDay struct {
	Date           time.Time `json:"date"`
	BMR            int       `json:"bmr"`
	ConsumedKcal   int       `json:"consumed_kcal"`
	ActiveKcal     int       `json:"active_kcal"`
	DeficitKcal    int       `json:"deficit_kcal"`
	BalanceKcal    int       `json:"balance_kcal"`
	MeasurementDay bool      `json:"measurement_day"`
}

// GetProgress is the profile-page projection (uncapped burn). A nil report
// with a nil error means the user lacks a baseline, a recent measurement or a
// goal; the handler renders that as an empty state, not a failure.
func (s *ProgressService) GetProgress(ctx context.Context, clerkID string) (*progress.Report, error) {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.ProjectForUser(ctx, userID, false)
}

// ProjectForUser loads the user's snapshots and energy window and runs the
// projection. capped selects the squad-leaderboard variant.
func (s *ProgressService) ProjectForUser(ctx context.Context, userID uuid.UUID, capped bool) (*progress.Report, error) {
	var goalKg *float64
	var baselineID *uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT fat_mass_goal, initial_body_analysis_id FROM users WHERE id = $1`, userID).
		Scan(&goalKg, &baselineID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to load user goals: %w", err)
	}
	if goalKg == nil || baselineID == nil {
		return nil, nil
	}

	baseline, err := s.snapshotByID(ctx, *baselineID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latestSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if baseline == nil || latest == nil {
		return nil, nil
	}

	days, err := s.energyWindow(ctx, userID, latest)
	if err != nil {
		return nil, err
	}

	if capped {
		return progress.ProjectCapped(baseline, latest, goalKg, days), nil
	}
	return progress.Project(baseline, latest, goalKg, days), nil
}

// DeficitHistory returns the per-day energy ledger since the last measurement,
// oldest first, with the measurement-day adjustment applied to the first row.
func (s *ProgressService) DeficitHistory(ctx context.Context, clerkID string) ([]DeficitDay, error) {
	userID, err := s.users.lookupUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	latest, err := s.latestSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}

	days, err := s.energyWindow(ctx, userID, latest)
	if err != nil {
		return nil, err
	}

	history := make([]DeficitDay, len(days))
	start := dayOf(latest.Timestamp)
	for i, d := range days {
		history[i] = DeficitDay{
			Date:           start.AddDate(0, 0, i),
			BMR:            latest.Metabolism,
			ConsumedKcal:   d.ConsumedKcal,
			ActiveKcal:     d.ActiveKcal,
			DeficitKcal:    energy.DailyDeficit(latest.Metabolism, d.ActiveKcal, d.ConsumedKcal),
			BalanceKcal:    energy.DailyBalance(latest.Metabolism, d.ActiveKcal, d.ConsumedKcal),
			MeasurementDay: i == 0,
		}
	}

	return history, nil
}

// energyWindow builds one DayEnergy per calendar day from the latest
// measurement through today. The first day only counts calories consumed
// after the measurement and drops active burn, since activity syncs carry no
// intra-day timing.
func (s *ProgressService) energyWindow(ctx context.Context, userID uuid.UUID, latest *progress.Snapshot) ([]progress.DayEnergy, error) {
	now := time.Now().UTC()
	n := progress.WindowDays(latest.Timestamp, now)
	if n == 0 {
		return nil, nil
	}

	start := dayOf(latest.Timestamp)

	query := `
	SELECT date, COALESCE(SUM(calories), 0)::int AS consumed
	FROM meal_logs
	WHERE user_id = $1 AND date >= $2
	GROUP BY date
	`

	rows, err := s.db.Query(ctx, query, userID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load energy window: %w", err)
	}
	defer rows.Close()

	days := make([]progress.DayEnergy, n)
	for rows.Next() {
		var date time.Time
		var consumed int
		if err := rows.Scan(&date, &consumed); err != nil {
			return nil, fmt.Errorf("failed to scan energy day: %w", err)
		}
		idx := int(dayOf(date).Sub(start).Hours() / 24)
		if idx < 0 || idx >= n {
			continue
		}
		days[idx].ConsumedKcal = consumed
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read energy window: %w", err)
	}

	actQuery := `
	SELECT date, active_kcal
	FROM activities
	WHERE user_id = $1 AND date >= $2
	`
	actRows, err := s.db.Query(ctx, actQuery, userID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	defer actRows.Close()

	for actRows.Next() {
		var date time.Time
		var active int
		if err := actRows.Scan(&date, &active); err != nil {
			return nil, fmt.Errorf("failed to scan activity day: %w", err)
		}
		idx := int(dayOf(date).Sub(start).Hours() / 24)
		if idx < 0 || idx >= n {
			continue
		}
		days[idx].ActiveKcal = active
	}
	if err := actRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}

	consumedBefore, err := s.consumedBefore(ctx, userID, latest.Timestamp)
	if err != nil {
		return nil, err
	}
	days[0] = progress.ApplyMeasurementDayRule(days[0], consumedBefore)

	return days, nil
}

// consumedBefore sums the measurement day's calories logged before the
// measurement itself, going by the log rows' creation timestamps.
func (s *ProgressService) consumedBefore(ctx context.Context, userID uuid.UUID, measuredAt time.Time) (int, error) {
	query := `
	SELECT COALESCE(SUM(calories), 0)::int
	FROM meal_logs
	WHERE user_id = $1 AND date = $2 AND created_at < $3
	`

	var total int
	err := s.db.QueryRow(ctx, query, userID, dayOf(measuredAt), measuredAt).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum pre-measurement calories: %w", err)
	}
	return total, nil
}

func (s *ProgressService) snapshotByID(ctx context.Context, id uuid.UUID) (*progress.Snapshot, error) {
	snap := &progress.Snapshot{}
	err := s.db.QueryRow(ctx, `SELECT timestamp, fat_mass_kg, metabolism FROM body_analyses WHERE id = $1`, id).
		Scan(&snap.Timestamp, &snap.FatMassKg, &snap.Metabolism)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load body analysis: %w", err)
	}
	return snap, nil
}

func (s *ProgressService) latestSnapshot(ctx context.Context, userID uuid.UUID) (*progress.Snapshot, error) {
	snap := &progress.Snapshot{}
	err := s.db.QueryRow(ctx, `
		SELECT timestamp, fat_mass_kg, metabolism
		FROM body_analyses
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`, userID).Scan(&snap.Timestamp, &snap.FatMassKg, &snap.Metabolism)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest body analysis: %w", err)
	}
	return snap, nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
