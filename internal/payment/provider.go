// Package payment adapts the external payment provider.
package payment

import (
	"context"
	"errors"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
)

// ErrNotConfigured is returned by Disabled for every call.
var ErrNotConfigured = errors.New("payment provider is not configured")

// Provider is the payment provider capability the service consumes.
type Provider interface {
	// ListCardMethods returns the customer's cards in provider order.
	ListCardMethods(ctx context.Context, customerRef string) ([]domain.PaymentMethod, error)
	CreateCustomer(ctx context.Context, profile domain.CustomerProfile) (string, error)
	// SetDefaultMethod makes methodID the customer's default card.
	SetDefaultMethod(ctx context.Context, customerRef, methodID string) error
	// DetachMethod removes methodID from whichever customer holds it.
	DetachMethod(ctx context.Context, methodID string) error
	// CreateCharge submits an immediate, confirmed charge.
	CreateCharge(ctx context.Context, req domain.ProviderChargeRequest) (*domain.ProviderCharge, error)
	RetrieveCharge(ctx context.Context, chargeID string) (*domain.ProviderCharge, error)
}

// Error is a failure reported by the provider.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Message extracts the provider's message from err.
func Message(err error) string {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}

// Disabled is used when no provider credentials are configured.
type Disabled struct{}

func (Disabled) ListCardMethods(context.Context, string) ([]domain.PaymentMethod, error) {
	return nil, ErrNotConfigured
}

func (Disabled) CreateCustomer(context.Context, domain.CustomerProfile) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) SetDefaultMethod(context.Context, string, string) error {
	return ErrNotConfigured
}

func (Disabled) DetachMethod(context.Context, string) error {
	return ErrNotConfigured
}

func (Disabled) CreateCharge(context.Context, domain.ProviderChargeRequest) (*domain.ProviderCharge, error) {
	return nil, ErrNotConfigured
}

func (Disabled) RetrieveCharge(context.Context, string) (*domain.ProviderCharge, error) {
	return nil, ErrNotConfigured
}
