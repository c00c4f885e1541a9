package user

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/repository"
)

const userColumns = `user_id, email, name, team_id, invitation_status, is_admin, payment_profile_ref, created_at`

// Create inserts a new user.
func Create(ctx context.Context, exec repository.DBTX, u *domain.User) error {
	query := `
		INSERT INTO users (user_id, email, name, team_id, invitation_status, is_admin, payment_profile_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := exec.QueryRowContext(ctx, query,
		u.UserID, u.Email, u.Name, u.TeamID, u.InvitationStatus, u.IsAdmin, u.PaymentProfileRef,
	).Scan(&u.CreatedAt)
	if err != nil {
		return repository.WrapWrite("create user", err)
	}
	return nil
}

// Get retrieves a user by ID.
func Get(ctx context.Context, exec repository.DBTX, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	return getOne(ctx, exec, query, userID)
}

// GetForUpdate retrieves a user by ID and locks the row until the transaction ends.
func GetForUpdate(ctx context.Context, exec repository.DBTX, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 FOR UPDATE`
	return getOne(ctx, exec, query, userID)
}

// GetByEmail retrieves a user by email.
func GetByEmail(ctx context.Context, exec repository.DBTX, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return getOne(ctx, exec, query, email)
}

// GetByEmailForUpdate retrieves a user by email and locks the row.
func GetByEmailForUpdate(ctx context.Context, exec repository.DBTX, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 FOR UPDATE`
	return getOne(ctx, exec, query, email)
}

func getOne(ctx context.Context, exec repository.DBTX, query string, arg string) (*domain.User, error) {
	var u domain.User
	err := exec.QueryRowContext(ctx, query, arg).Scan(
		&u.UserID,
		&u.Email,
		&u.Name,
		&u.TeamID,
		&u.InvitationStatus,
		&u.IsAdmin,
		&u.PaymentProfileRef,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// SetMembership updates the user's team back-reference.
func SetMembership(ctx context.Context, exec repository.DBTX, userID string, m domain.UserMembership) error {
	query := `
		UPDATE users
		SET team_id = $1, invitation_status = $2, is_admin = $3
		WHERE user_id = $4
	`
	result, err := exec.ExecContext(ctx, query, m.TeamID, m.InvitationStatus, m.IsAdmin, userID)
	if err != nil {
		return fmt.Errorf("failed to update user membership: %w", err)
	}
	if err := repository.RequireAffected(result); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}

// ClearTeam removes the team back-reference from every user of the team
// and returns the affected user IDs.
func ClearTeam(ctx context.Context, exec repository.DBTX, teamID string) ([]string, error) {
	query := `
		UPDATE users
		SET team_id = NULL, invitation_status = 'none', is_admin = false
		WHERE team_id = $1
		RETURNING user_id
	`
	rows, err := exec.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear team members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return userIDs, nil
}

// SetPaymentProfile stores the payment-provider customer reference.
func SetPaymentProfile(ctx context.Context, exec repository.DBTX, userID, ref string) error {
	query := `UPDATE users SET payment_profile_ref = $1 WHERE user_id = $2`
	result, err := exec.ExecContext(ctx, query, ref, userID)
	if err != nil {
		return fmt.Errorf("failed to update payment profile: %w", err)
	}
	if err := repository.RequireAffected(result); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
