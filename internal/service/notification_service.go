package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
)

// EventNewNotification is the event name published to a user's sessions.
const EventNewNotification = "new_notification"

const (
	notificationListLimit = 50
	publishTimeout        = 2 * time.Second
)

// NotificationService stores notifications and publishes them to live sessions.
type NotificationService struct {
	store     NotificationStore
	publisher Publisher
	log       *slog.Logger
	newID     func() string
}

// NewNotificationService creates a new notification service. publisher may be nil.
func NewNotificationService(store NotificationStore, publisher Publisher, log *slog.Logger) *NotificationService {
	return &NotificationService{
		store:     store,
		publisher: publisher,
		log:       log,
		newID:     uuid.NewString,
	}
}

// Notify persists a notification for userID and publishes it best-effort.
// Success means the record was stored; delivery problems are only logged.
func (s *NotificationService) Notify(ctx context.Context, userID, key string, typ domain.NotificationType, params MessageParams) (*domain.Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, validationError("target user id is required")
	}

	coerced := domain.CoerceNotificationType(string(typ))
	if coerced != typ {
		s.log.Warn("unknown notification type, using system", "type", string(typ))
	}

	n := &domain.Notification{
		NotificationID: s.newID(),
		UserID:         userID,
		Message:        RenderMessage(coerced, key, params),
		Type:           coerced,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	s.publish(ctx, n)
	return n, nil
}

func (s *NotificationService) publish(ctx context.Context, n *domain.Notification) {
	if s.publisher == nil {
		return
	}

	// The caller's cancellation must not undo a delivery of an already stored record.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, n.UserID, EventNewNotification, n); err != nil {
		s.log.Info("notification stored but not delivered",
			"notification_id", n.NotificationID,
			"user_id", n.UserID,
			"error", fmt.Errorf("%w: %w", ErrNotificationUndelivered, err),
		)
	}
}

// ListNotifications returns the user's 50 most recent notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	notifications, err := s.store.ListNotifications(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips seen on one notification owned by userID.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.store.MarkNotificationRead(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return n, nil
}

// MarkAllRead flips seen on every unseen notification of userID.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}

// UnreadCount returns how many notifications userID has not seen.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

// notify is the side-effect form used by other services: a failure to store
// the notification is logged, never returned.
func notify(ctx context.Context, n Notifier, log *slog.Logger, userID, key string, typ domain.NotificationType, params MessageParams) {
	if n == nil {
		return
	}
	if _, err := n.Notify(ctx, userID, key, typ, params); err != nil {
		log.Error("failed to create notification",
			"user_id", userID,
			"type", string(typ),
			"key", key,
			"error", err,
		)
	}
}
