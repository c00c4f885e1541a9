// Package store backs the service-layer store interfaces with Postgres.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/repository"
	"github.com/mishasvintus/delivery_team_backend/internal/repository/booking"
	"github.com/mishasvintus/delivery_team_backend/internal/repository/notification"
	"github.com/mishasvintus/delivery_team_backend/internal/repository/team"
	"github.com/mishasvintus/delivery_team_backend/internal/repository/user"
	"github.com/mishasvintus/delivery_team_backend/internal/service"
)

// Postgres implements every store the services need on one *sql.DB.
type Postgres struct {
	db *sql.DB
}

var (
	_ service.MembershipStore   = (*Postgres)(nil)
	_ service.PaymentDirectory  = (*Postgres)(nil)
	_ service.BookingStore      = (*Postgres)(nil)
	_ service.NotificationStore = (*Postgres)(nil)
	_ service.UserDirectory     = (*Postgres)(nil)
)

// New creates a new Postgres store.
func New(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// InTx runs fn in one transaction.
func (p *Postgres) InTx(ctx context.Context, fn func(tx service.MembershipTx) error) error {
	return repository.WithTx(ctx, p.db, func(tx *sql.Tx) error {
		return fn(&membershipTx{tx: tx})
	})
}

// GetTeam retrieves a team with its members.
func (p *Postgres) GetTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	return team.Get(ctx, p.db, teamID)
}

// GetUser retrieves a user by ID.
func (p *Postgres) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return user.Get(ctx, p.db, userID)
}

// GetUserByEmail retrieves a user by email.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return user.GetByEmail(ctx, p.db, email)
}

// SetPaymentProfile stores the user's payment customer reference.
func (p *Postgres) SetPaymentProfile(ctx context.Context, userID, ref string) error {
	return user.SetPaymentProfile(ctx, p.db, userID, ref)
}

// GetBooking retrieves a booking by ID.
func (p *Postgres) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return booking.Get(ctx, p.db, bookingID)
}

// MarkBookingPaid records a succeeded charge on the booking.
func (p *Postgres) MarkBookingPaid(ctx context.Context, bookingID string, pay domain.BookingPayment) error {
	return booking.MarkPaid(ctx, p.db, bookingID, pay)
}

// CreateNotification inserts a notification.
func (p *Postgres) CreateNotification(ctx context.Context, n *domain.Notification) error {
	return kindOf(notification.Create(ctx, p.db, n))
}

// ListNotifications returns the user's newest notifications.
func (p *Postgres) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	return notification.ListByUser(ctx, p.db, userID, limit)
}

// MarkNotificationRead flips seen on one of the user's notifications.
func (p *Postgres) MarkNotificationRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	return notification.MarkRead(ctx, p.db, notificationID, userID)
}

// MarkAllNotificationsRead flips seen on all of the user's notifications.
func (p *Postgres) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	return notification.MarkAllRead(ctx, p.db, userID)
}

// CountUnreadNotifications counts the user's unseen notifications.
func (p *Postgres) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	return notification.CountUnread(ctx, p.db, userID)
}

// kindOf tags constraint failures with the matching service error kind.
func kindOf(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %w", service.ErrConflict, err)
	case errors.Is(err, repository.ErrMissingReference):
		return fmt.Errorf("%w: %w", service.ErrNotFound, err)
	default:
		return err
	}
}

// membershipTx binds the membership writes to one transaction.
type membershipTx struct {
	tx *sql.Tx
}

// LockTeam reads the team and its members with the row held FOR UPDATE.
func (m *membershipTx) LockTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	return team.GetForUpdate(ctx, m.tx, teamID)
}

// LockUser reads a user with the row held FOR UPDATE.
func (m *membershipTx) LockUser(ctx context.Context, userID string) (*domain.User, error) {
	return user.GetForUpdate(ctx, m.tx, userID)
}

// LockUserByEmail is LockUser keyed by email.
func (m *membershipTx) LockUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return user.GetByEmailForUpdate(ctx, m.tx, email)
}

func (m *membershipTx) CreateTeam(ctx context.Context, t *domain.Team) error {
	return kindOf(team.Create(ctx, m.tx, t))
}

func (m *membershipTx) DeleteTeam(ctx context.Context, teamID string) error {
	return team.Delete(ctx, m.tx, teamID)
}

func (m *membershipTx) AddMember(ctx context.Context, teamID string, member domain.TeamMember) error {
	return kindOf(team.AddMember(ctx, m.tx, teamID, member))
}

func (m *membershipTx) SetMemberStatus(ctx context.Context, teamID, userID string, status domain.InvitationStatus) error {
	return team.SetMemberStatus(ctx, m.tx, teamID, userID, status)
}

func (m *membershipTx) RemoveMember(ctx context.Context, teamID, userID string) error {
	return team.RemoveMember(ctx, m.tx, teamID, userID)
}

func (m *membershipTx) SetUserMembership(ctx context.Context, userID string, um domain.UserMembership) error {
	return user.SetMembership(ctx, m.tx, userID, um)
}

// ClearTeamMemberships resets every user pointing at teamID and returns their ids.
func (m *membershipTx) ClearTeamMemberships(ctx context.Context, teamID string) ([]string, error) {
	return user.ClearTeam(ctx, m.tx, teamID)
}
