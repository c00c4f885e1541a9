package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/payment"
)

// PaymentCheck reports whether a user's charges would resolve to a card.
type PaymentCheck struct {
	HasPaymentMethod bool                 `json:"has_payment_method"`
	Source           domain.PaymentSource `json:"source,omitempty"`
}

// PaymentService manages provider customers and charges bookings.
type PaymentService struct {
	directory PaymentDirectory
	bookings  BookingStore
	provider  payment.Provider
	resolver  *PaymentResolver
	notifier  Notifier
	log       *slog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	directory PaymentDirectory,
	bookings BookingStore,
	provider payment.Provider,
	resolver *PaymentResolver,
	notifier Notifier,
	log *slog.Logger,
	timeout time.Duration,
) *PaymentService {
	return &PaymentService{
		directory: directory,
		bookings:  bookings,
		provider:  provider,
		resolver:  resolver,
		notifier:  notifier,
		log:       log,
		timeout:   timeout,
		now:       time.Now,
	}
}

func (s *PaymentService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.directory.GetUser(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// EnsureCustomer returns the user's provider customer reference, creating
// the customer on first use.
func (s *PaymentService) EnsureCustomer(ctx context.Context, userID string) (string, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.PaymentProfileRef != nil && *u.PaymentProfileRef != "" {
		return *u.PaymentProfileRef, nil
	}

	pctx, cancel := withProviderTimeout(ctx, s.timeout)
	ref, err := s.provider.CreateCustomer(pctx, domain.CustomerProfile{
		UserID: u.UserID,
		Email:  u.Email,
		Name:   u.DisplayName(),
	})
	cancel()
	if err != nil {
		return "", providerFailure(err)
	}

	if err := s.directory.SetPaymentProfile(ctx, u.UserID, ref); err != nil {
		return "", fmt.Errorf("failed to store payment profile: %w", err)
	}

	s.log.Info("payment customer created", "user_id", u.UserID)
	return ref, nil
}

// ListPaymentMethods lists the user's own cards. A user without a
// provider customer has none.
func (s *PaymentService) ListPaymentMethods(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.PaymentProfileRef == nil || *u.PaymentProfileRef == "" {
		return []domain.PaymentMethod{}, nil
	}

	ctx, cancel := withProviderTimeout(ctx, s.timeout)
	defer cancel()

	methods, err := s.provider.ListCardMethods(ctx, *u.PaymentProfileRef)
	if err != nil {
		return nil, providerFailure(err)
	}
	if methods == nil {
		methods = []domain.PaymentMethod{}
	}
	return methods, nil
}

// ownedMethod returns the user's customer reference once methodID is
// confirmed to be one of that customer's cards.
func (s *PaymentService) ownedMethod(ctx context.Context, userID, methodID string) (string, error) {
	if methodID == "" {
		return "", fmt.Errorf("%w: payment method id is required", ErrValidation)
	}
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.PaymentProfileRef == nil || *u.PaymentProfileRef == "" {
		return "", ErrNoPaymentProfile
	}

	pctx, cancel := withProviderTimeout(ctx, s.timeout)
	methods, err := s.provider.ListCardMethods(pctx, *u.PaymentProfileRef)
	cancel()
	if err != nil {
		return "", providerFailure(err)
	}
	for _, m := range methods {
		if m.ID == methodID {
			return *u.PaymentProfileRef, nil
		}
	}
	return "", ErrMethodNotOwned
}

// SetDefaultPaymentMethod makes one of the user's own cards their default.
func (s *PaymentService) SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error {
	ref, err := s.ownedMethod(ctx, userID, methodID)
	if err != nil {
		return err
	}

	ctx, cancel := withProviderTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.provider.SetDefaultMethod(ctx, ref, methodID); err != nil {
		return providerFailure(err)
	}
	s.log.Info("default payment method set", "user_id", userID, "method_id", methodID)
	return nil
}

// DeletePaymentMethod detaches one of the user's own cards.
func (s *PaymentService) DeletePaymentMethod(ctx context.Context, userID, methodID string) error {
	if _, err := s.ownedMethod(ctx, userID, methodID); err != nil {
		return err
	}

	ctx, cancel := withProviderTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.provider.DetachMethod(ctx, methodID); err != nil {
		return providerFailure(err)
	}
	s.log.Info("payment method detached", "user_id", userID, "method_id", methodID)
	return nil
}

// CheckPaymentMethod reports whether a charge for userID would find a card.
func (s *PaymentService) CheckPaymentMethod(ctx context.Context, userID string) (*PaymentCheck, error) {
	resolved, err := s.resolver.ResolvePaymentMethod(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoPaymentMethod) {
			return &PaymentCheck{}, nil
		}
		return nil, err
	}
	return &PaymentCheck{HasPaymentMethod: true, Source: resolved.Source}, nil
}

func providerFailure(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &PaymentFailedError{Message: "payment provider timed out", Err: err}
	}
	return &PaymentFailedError{Message: payment.Message(err), Err: err}
}
