package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kiloFitAPI/internal/notification"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetDispatcher wires the async push pipeline; without it notifications are
// stored but never pushed (fine for tests).
func (s *NotificationService) SetDispatcher(d *NotificationDispatcher) {
	s.dispatcher = d
}

// Notify persists an in-app notification and queues a push for it.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, typ notification.Type, title, message string, data map[string]any) error {
	notif := &notification.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}

	query := `
	INSERT INTO notifications (id, user_id, type, title, message, is_read, data, created_at)
	VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)
	`

	_, err := s.db.Exec(ctx, query, notif.ID, notif.UserID, notif.Type, notif.Title, notif.Message, notif.Data, notif.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if s.dispatcher != nil {
		tokens, err := s.DeviceTokens(ctx, userID)
		if err == nil && len(tokens) > 0 {
			s.dispatcher.Dispatch(notif, tokens)
		}
	}

	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
	SELECT id, user_id, type, title, message, is_read, data, created_at
	FROM notifications
	WHERE user_id = $1
	ORDER BY created_at DESC
	LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n := &notification.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.Data, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	return out, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// DeviceTokens returns the user's registered push targets. One token per user
// for now; the slice keeps the provider interface stable if that changes.
func (s *NotificationService) DeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	var token *string
	err := s.db.QueryRow(ctx, `SELECT fcm_device_token FROM users WHERE id = $1`, userID).Scan(&token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load device token: %w", err)
	}
	if token == nil || *token == "" {
		return nil, nil
	}
	return []notification.DeviceToken{{Token: *token, Platform: "android"}}, nil
}
