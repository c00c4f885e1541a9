package service

import (
	"context"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
)

// Repositories return sql.ErrNoRows for missing records; services map it to
// the matching ErrXNotFound.

// MembershipStore persists teams together with the users' team back-references.
type MembershipStore interface {
	// InTx runs fn in one transaction. Nothing fn wrote survives an error.
	InTx(ctx context.Context, fn func(tx MembershipTx) error) error
	GetTeam(ctx context.Context, teamID string) (*domain.Team, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// MembershipTx is the set of writes a membership transition may make.
// Lock order is team first, then users.
type MembershipTx interface {
	LockTeam(ctx context.Context, teamID string) (*domain.Team, error)
	LockUser(ctx context.Context, userID string) (*domain.User, error)
	LockUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateTeam(ctx context.Context, team *domain.Team) error
	DeleteTeam(ctx context.Context, teamID string) error
	AddMember(ctx context.Context, teamID string, member domain.TeamMember) error
	SetMemberStatus(ctx context.Context, teamID, userID string, status domain.InvitationStatus) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	SetUserMembership(ctx context.Context, userID string, m domain.UserMembership) error
	// ClearTeamMemberships clears the back-reference of every user of the team.
	ClearTeamMemberships(ctx context.Context, teamID string) ([]string, error)
}

// PaymentDirectory is what payment resolution reads and writes.
type PaymentDirectory interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetTeam(ctx context.Context, teamID string) (*domain.Team, error)
	SetPaymentProfile(ctx context.Context, userID, ref string) error
}

// BookingStore is the booking record store used by charges.
type BookingStore interface {
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	// MarkBookingPaid is a single-record atomic update.
	MarkBookingPaid(ctx context.Context, bookingID string, p domain.BookingPayment) error
}

// NotificationStore persists notification records.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
}

// Publisher delivers an event to a subscriber group without acknowledgment.
type Publisher interface {
	Publish(ctx context.Context, groupID, event string, payload any) error
}

// Notifier is the notification side effect other services trigger.
type Notifier interface {
	Notify(ctx context.Context, userID string, key string, typ domain.NotificationType, params MessageParams) (*domain.Notification, error)
}
