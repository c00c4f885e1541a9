package domain

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// NotificationType is the domain a notification belongs to.
type NotificationType string

// Notification type constants.
const (
	NotificationBooking     NotificationType = "booking"
	NotificationPayment     NotificationType = "payment"
	NotificationTeam        NotificationType = "team"
	NotificationOrderStatus NotificationType = "order_status"
	NotificationSystem      NotificationType = "system"
)

// IsValid checks if the type is one of the known values.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationBooking, NotificationPayment, NotificationTeam, NotificationOrderStatus, NotificationSystem:
		return true
	}
	return false
}

// CoerceNotificationType maps unknown types to NotificationSystem.
func CoerceNotificationType(s string) NotificationType {
	t := NotificationType(s)
	if !t.IsValid() {
		return NotificationSystem
	}
	return t
}

// Scan implements sql.Scanner.
func (t *NotificationType) Scan(value any) error {
	if value == nil {
		return fmt.Errorf("NotificationType cannot be NULL")
	}
	str, err := scanString(value, "NotificationType")
	if err != nil {
		return err
	}
	*t = CoerceNotificationType(str)
	return nil
}

// Value implements driver.Valuer.
func (t NotificationType) Value() (driver.Value, error) {
	return string(CoerceNotificationType(string(t))), nil
}

// Notification is a durable, user-addressed record of a state change.
// Only Seen changes after creation.
type Notification struct {
	NotificationID string           `json:"id"`
	UserID         string           `json:"user_id"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	Seen           bool             `json:"seen"`
	CreatedAt      time.Time        `json:"created_at"`
}
