package team

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/repository"
)

// Create inserts a new team. Members are added separately with AddMember.
func Create(ctx context.Context, exec repository.DBTX, t *domain.Team) error {
	query := `INSERT INTO teams (team_id, name, owner_id) VALUES ($1, $2, $3) RETURNING created_at`
	err := exec.QueryRowContext(ctx, query, t.TeamID, t.Name, t.OwnerID).Scan(&t.CreatedAt)
	if err != nil {
		return repository.WrapWrite("create team", err)
	}
	return nil
}

// Get retrieves a team with all its members in stored order.
func Get(ctx context.Context, exec repository.DBTX, teamID string) (*domain.Team, error) {
	query := `SELECT team_id, name, owner_id, created_at FROM teams WHERE team_id = $1`
	return get(ctx, exec, query, teamID)
}

// GetForUpdate retrieves a team and locks its row until the transaction ends.
// Membership mutations take this lock first so they serialize per team.
func GetForUpdate(ctx context.Context, exec repository.DBTX, teamID string) (*domain.Team, error) {
	query := `SELECT team_id, name, owner_id, created_at FROM teams WHERE team_id = $1 FOR UPDATE`
	return get(ctx, exec, query, teamID)
}

func get(ctx context.Context, exec repository.DBTX, query, teamID string) (*domain.Team, error) {
	var t domain.Team
	err := exec.QueryRowContext(ctx, query, teamID).Scan(&t.TeamID, &t.Name, &t.OwnerID, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	members, err := Members(ctx, exec, teamID)
	if err != nil {
		return nil, err
	}
	t.Members = members

	return &t, nil
}

// Members returns the team's members in the order they were added.
func Members(ctx context.Context, exec repository.DBTX, teamID string) ([]domain.TeamMember, error) {
	query := `
		SELECT m.user_id, u.email, u.name, m.role, m.invitation_status, u.payment_profile_ref
		FROM team_members m
		JOIN users u ON u.user_id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.position
	`
	rows, err := exec.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	members := make([]domain.TeamMember, 0)
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.UserID, &m.Email, &m.Name, &m.Role, &m.InvitationStatus, &m.PaymentProfileRef); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return members, nil
}

// AddMember appends a member row to the team.
func AddMember(ctx context.Context, exec repository.DBTX, teamID string, m domain.TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, user_id, role, invitation_status)
		VALUES ($1, $2, $3, $4)
	`
	_, err := exec.ExecContext(ctx, query, teamID, m.UserID, m.Role, m.InvitationStatus)
	if err != nil {
		return repository.WrapWrite("add team member", err)
	}
	return nil
}

// SetMemberStatus updates one member's invitation status.
func SetMemberStatus(ctx context.Context, exec repository.DBTX, teamID, userID string, status domain.InvitationStatus) error {
	query := `UPDATE team_members SET invitation_status = $1 WHERE team_id = $2 AND user_id = $3`
	result, err := exec.ExecContext(ctx, query, status, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to update member status: %w", err)
	}
	if err := repository.RequireAffected(result); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}

// RemoveMember strikes one member row.
func RemoveMember(ctx context.Context, exec repository.DBTX, teamID, userID string) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`
	result, err := exec.ExecContext(ctx, query, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	if err := repository.RequireAffected(result); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}

// Delete removes the team. Member rows go with it.
func Delete(ctx context.Context, exec repository.DBTX, teamID string) error {
	query := `DELETE FROM teams WHERE team_id = $1`
	result, err := exec.ExecContext(ctx, query, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if err := repository.RequireAffected(result); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	return nil
}
