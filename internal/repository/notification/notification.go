package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/repository"
)

// Create inserts a notification and fills its creation timestamp.
func Create(ctx context.Context, exec repository.DBTX, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (notification_id, user_id, message, type, seen)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := exec.QueryRowContext(ctx, query, n.NotificationID, n.UserID, n.Message, n.Type, n.Seen).Scan(&n.CreatedAt)
	if err != nil {
		return repository.WrapWrite("create notification", err)
	}
	return nil
}

// ListByUser returns the user's most recent notifications, newest first.
func ListByUser(ctx context.Context, exec repository.DBTX, userID string, limit int) ([]domain.Notification, error) {
	query := `
		SELECT notification_id, user_id, message, type, seen, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, notification_id DESC
		LIMIT $2
	`
	rows, err := exec.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.NotificationID, &n.UserID, &n.Message, &n.Type, &n.Seen, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return notifications, nil
}

// MarkRead flips seen on one of the user's notifications and returns it.
func MarkRead(ctx context.Context, exec repository.DBTX, notificationID, userID string) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET seen = true
		WHERE notification_id = $1 AND user_id = $2
		RETURNING notification_id, user_id, message, type, seen, created_at
	`
	var n domain.Notification
	err := exec.QueryRowContext(ctx, query, notificationID, userID).Scan(
		&n.NotificationID, &n.UserID, &n.Message, &n.Type, &n.Seen, &n.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return &n, nil
}

// MarkAllRead flips seen on every unseen notification of the user.
func MarkAllRead(ctx context.Context, exec repository.DBTX, userID string) (int64, error) {
	query := `UPDATE notifications SET seen = true WHERE user_id = $1 AND seen = false`
	result, err := exec.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// CountUnread returns how many notifications the user has not seen.
func CountUnread(ctx context.Context, exec repository.DBTX, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND seen = false`
	if err := exec.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}
