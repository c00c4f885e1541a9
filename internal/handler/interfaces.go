package handler

import (
	"context"
	"net/http"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/service"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_services.go -package=mocks

// TeamServiceInterface defines the interface for team membership operations.
type TeamServiceInterface interface {
	CreateTeam(ctx context.Context, requesterID, name string) (*domain.Team, error)
	GetTeam(ctx context.Context, teamID, requesterID string) (*domain.Team, error)
	GetMyTeam(ctx context.Context, requesterID string) (*domain.Team, error)
	Invite(ctx context.Context, teamID, requesterID, email, name string) (*service.InviteResult, error)
	AcceptInvitation(ctx context.Context, teamID, email string) error
	RejectInvitation(ctx context.Context, teamID, email string) error
	RemoveMember(ctx context.Context, teamID, requesterID, targetUserID string) error
	DeleteTeam(ctx context.Context, teamID, requesterID string) error
}

// PaymentServiceInterface defines the interface for payment operations.
type PaymentServiceInterface interface {
	EnsureCustomer(ctx context.Context, userID string) (string, error)
	ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error)
	SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error
	DeletePaymentMethod(ctx context.Context, userID, methodID string) error
	CheckPaymentMethod(ctx context.Context, userID string) (*service.PaymentCheck, error)
	Charge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error)
	SyncCharge(ctx context.Context, requesterID, bookingID, chargeID string) (*domain.ChargeResult, error)
}

// NotificationServiceInterface defines the interface for notification operations.
type NotificationServiceInterface interface {
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// SessionServer attaches a live session to a user's event stream.
type SessionServer interface {
	Serve(w http.ResponseWriter, r *http.Request, groupID string)
}
