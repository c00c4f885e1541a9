package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
)

// UserDirectory is the user lookup used to resolve the caller's identity.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserService handles user lookups.
type UserService struct {
	users UserDirectory
}

// NewUserService creates a new user service.
func NewUserService(users UserDirectory) *UserService {
	return &UserService{users: users}
}

// GetUserByEmail returns the user registered under email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, validationError("email is required")
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUser returns the user with userID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
