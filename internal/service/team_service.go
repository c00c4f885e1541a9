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
	"github.com/mishasvintus/delivery_team_backend/internal/mailer"
)

const mailTimeout = 10 * time.Second

// Invite outcome messages.
const (
	InviteMessageAdded       = "User added to team and invitation sent"
	InviteMessageEmailFailed = "User added to team but invitation email failed to send"
	InviteMessageSent        = "Invitation sent successfully"
)

// InviteResult reports what an invite did.
type InviteResult struct {
	MemberAdded bool   `json:"member_added"`
	EmailSent   bool   `json:"email_sent"`
	Message     string `json:"message"`
}

// TeamService runs the team membership state machine.
// Every transition writes the team and the affected users in one transaction.
type TeamService struct {
	store       MembershipStore
	mail        mailer.Sender
	notifier    Notifier
	log         *slog.Logger
	frontendURL string
	newID       func() string
}

// NewTeamService creates a new team service.
func NewTeamService(store MembershipStore, mail mailer.Sender, notifier Notifier, log *slog.Logger, frontendURL string) *TeamService {
	return &TeamService{
		store:       store,
		mail:        mail,
		notifier:    notifier,
		log:         log,
		frontendURL: frontendURL,
		newID:       uuid.NewString,
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func lockTeam(ctx context.Context, tx MembershipTx, teamID string) (*domain.Team, error) {
	t, err := tx.LockTeam(ctx, teamID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

// CreateTeam creates a team owned by requesterID, who becomes its only,
// accepted, admin member.
func (s *TeamService) CreateTeam(ctx context.Context, requesterID, name string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("team name is required")
	}

	var created *domain.Team
	err := s.store.InTx(ctx, func(tx MembershipTx) error {
		u, err := tx.LockUser(ctx, requesterID)
		if err != nil {
			if isNoRows(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}
		if u.HasTeam() {
			return ErrAlreadyInTeam
		}

		t := &domain.Team{
			TeamID:  s.newID(),
			Name:    name,
			OwnerID: u.UserID,
		}
		if err := tx.CreateTeam(ctx, t); err != nil {
			return err
		}

		owner := domain.TeamMember{
			UserID:            u.UserID,
			Email:             u.Email,
			Name:              u.Name,
			Role:              domain.RoleAdmin,
			InvitationStatus:  domain.InvitationAccepted,
			PaymentProfileRef: u.PaymentProfileRef,
		}
		if err := tx.AddMember(ctx, t.TeamID, owner); err != nil {
			return err
		}

		err = tx.SetUserMembership(ctx, u.UserID, domain.UserMembership{
			TeamID:           &t.TeamID,
			InvitationStatus: domain.InvitationAccepted,
			IsAdmin:          true,
		})
		if err != nil {
			return err
		}

		t.Members = []domain.TeamMember{owner}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("team created", "team_id", created.TeamID, "owner_id", created.OwnerID)
	notify(ctx, s.notifier, s.log, created.OwnerID, "created", domain.NotificationTeam, MessageParams{TeamName: created.Name})

	return created, nil
}

// Invite adds the user registered under email as a pending member and
// emails them an invitation. The membership commits before the email is
// sent; an email failure after a successful write is reported in the
// result, not as an error. An unknown email only gets the email.
func (s *TeamService) Invite(ctx context.Context, teamID, requesterID, email, name string) (*InviteResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, validationError("email is required")
	}

	var (
		team    *domain.Team
		inviter domain.TeamMember
		invitee *domain.User
	)
	err := s.store.InTx(ctx, func(tx MembershipTx) error {
		t, err := lockTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		if !t.CanManage(requesterID) {
			return ErrNotTeamAdmin
		}
		team = t
		inviter, _ = t.Member(requesterID)

		u, err := tx.LockUserByEmail(ctx, email)
		if err != nil {
			if isNoRows(err) {
				return nil
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		if existing, ok := t.Member(u.UserID); ok {
			return &MembershipExistsError{Status: existing.InvitationStatus}
		}
		if u.HasTeam() {
			return ErrAlreadyInTeam
		}

		err = tx.AddMember(ctx, t.TeamID, domain.TeamMember{
			UserID:           u.UserID,
			Role:             domain.RoleMember,
			InvitationStatus: domain.InvitationPending,
		})
		if err != nil {
			return err
		}
		err = tx.SetUserMembership(ctx, u.UserID, domain.UserMembership{
			TeamID:           &t.TeamID,
			InvitationStatus: domain.InvitationPending,
		})
		if err != nil {
			return err
		}

		invitee = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if invitee != nil {
		s.log.Info("member invited", "team_id", team.TeamID, "user_id", invitee.UserID)
		notify(ctx, s.notifier, s.log, invitee.UserID, "invited", domain.NotificationTeam, MessageParams{TeamName: team.Name})
	}

	inviterName := inviter.Name
	if inviterName == "" {
		inviterName = inviter.Email
	}
	sendErr := s.sendInvitation(ctx, mailer.Invitation{
		Email:       email,
		Name:        name,
		TeamID:      team.TeamID,
		TeamName:    team.Name,
		InviterName: inviterName,
	})

	if invitee != nil {
		if sendErr != nil {
			s.log.Warn("invitation email failed, membership kept",
				"team_id", team.TeamID,
				"user_id", invitee.UserID,
				"error", sendErr,
			)
			return &InviteResult{MemberAdded: true, Message: InviteMessageEmailFailed}, nil
		}
		return &InviteResult{MemberAdded: true, EmailSent: true, Message: InviteMessageAdded}, nil
	}

	if sendErr != nil {
		s.log.Error("invitation email failed", "team_id", team.TeamID, "error", sendErr)
		return nil, fmt.Errorf("failed to send invitation email: %w", sendErr)
	}
	return &InviteResult{EmailSent: true, Message: InviteMessageSent}, nil
}

func (s *TeamService) sendInvitation(ctx context.Context, inv mailer.Invitation) error {
	msg, err := mailer.TeamInvitation(s.frontendURL, inv)
	if err != nil {
		return err
	}

	// The membership is already committed; the email goes out even if the caller has gone.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
	defer cancel()

	return s.mail.Send(ctx, msg)
}

// AcceptInvitation moves the pending membership of the user registered
// under email to accepted.
func (s *TeamService) AcceptInvitation(ctx context.Context, teamID, email string) error {
	return s.answerInvitation(ctx, teamID, email, domain.InvitationAccepted)
}

// RejectInvitation declines the pending membership of the user registered
// under email. The row is struck and the user's team reference cleared, so
// they are free to create or join a team, or to be invited again.
func (s *TeamService) RejectInvitation(ctx context.Context, teamID, email string) error {
	return s.answerInvitation(ctx, teamID, email, domain.InvitationRejected)
}

func (s *TeamService) answerInvitation(ctx context.Context, teamID, email string, to domain.InvitationStatus) error {
	var (
		team    *domain.Team
		invitee *domain.User
	)
	err := s.store.InTx(ctx, func(tx MembershipTx) error {
		t, err := lockTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}

		u, err := tx.LockUserByEmail(ctx, strings.TrimSpace(email))
		if err != nil {
			if isNoRows(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		m, ok := t.Member(u.UserID)
		if !ok {
			return ErrNoPendingInvitation
		}
		if m.InvitationStatus != domain.InvitationPending {
			return &InvitationStateError{Status: m.InvitationStatus}
		}

		if to == domain.InvitationRejected {
			if err := tx.RemoveMember(ctx, t.TeamID, u.UserID); err != nil {
				return err
			}
			if err := tx.SetUserMembership(ctx, u.UserID, domain.NoMembership()); err != nil {
				return err
			}
		} else {
			if err := tx.SetMemberStatus(ctx, t.TeamID, u.UserID, to); err != nil {
				return err
			}
			err = tx.SetUserMembership(ctx, u.UserID, domain.UserMembership{
				TeamID:           &t.TeamID,
				InvitationStatus: to,
				IsAdmin:          m.Role == domain.RoleAdmin,
			})
			if err != nil {
				return err
			}
		}

		team, invitee = t, u
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("invitation answered", "team_id", team.TeamID, "user_id", invitee.UserID, "status", string(to))

	params := MessageParams{TeamName: team.Name}
	if to == domain.InvitationAccepted {
		notify(ctx, s.notifier, s.log, invitee.UserID, "joined", domain.NotificationTeam, params)
		notify(ctx, s.notifier, s.log, team.OwnerID, "member_added", domain.NotificationTeam, params)
	} else {
		notify(ctx, s.notifier, s.log, team.OwnerID, "invitation_rejected", domain.NotificationTeam, params)
	}
	return nil
}

// RemoveMember strikes targetUserID from the team and clears their back-reference.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, requesterID, targetUserID string) error {
	var team *domain.Team
	err := s.store.InTx(ctx, func(tx MembershipTx) error {
		t, err := lockTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		if !t.CanManage(requesterID) {
			return ErrNotTeamAdmin
		}
		if t.IsOwner(targetUserID) {
			return ErrCannotRemoveOwner
		}
		if _, ok := t.Member(targetUserID); !ok {
			return ErrMemberNotFound
		}

		if err := tx.RemoveMember(ctx, t.TeamID, targetUserID); err != nil {
			return err
		}

		u, err := tx.LockUser(ctx, targetUserID)
		if err != nil {
			if isNoRows(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}
		if u.TeamID != nil && *u.TeamID == t.TeamID {
			if err := tx.SetUserMembership(ctx, u.UserID, domain.NoMembership()); err != nil {
				return err
			}
		}

		team = t
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("member removed", "team_id", team.TeamID, "user_id", targetUserID, "by", requesterID)

	params := MessageParams{TeamName: team.Name}
	notify(ctx, s.notifier, s.log, targetUserID, "removed", domain.NotificationTeam, params)
	notify(ctx, s.notifier, s.log, requesterID, "member_removed", domain.NotificationTeam, params)
	return nil
}

// DeleteTeam clears every member's back-reference and deletes the team.
// Only the owner may delete. Every former member except the owner is
// notified.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID, requesterID string) error {
	var (
		team    *domain.Team
		cleared []string
	)
	err := s.store.InTx(ctx, func(tx MembershipTx) error {
		t, err := lockTeam(ctx, tx, teamID)
		if err != nil {
			return err
		}
		if !t.IsOwner(requesterID) {
			return ErrNotTeamOwner
		}

		ids, err := tx.ClearTeamMemberships(ctx, t.TeamID)
		if err != nil {
			return err
		}
		if err := tx.DeleteTeam(ctx, t.TeamID); err != nil {
			return err
		}

		team, cleared = t, ids
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("team deleted", "team_id", team.TeamID, "members_cleared", len(cleared))

	for _, m := range team.Members {
		if m.UserID == requesterID {
			continue
		}
		notify(ctx, s.notifier, s.log, m.UserID, "deleted", domain.NotificationTeam, MessageParams{TeamName: team.Name})
	}
	return nil
}

// GetTeam returns a team the requester is listed in.
func (s *TeamService) GetTeam(ctx context.Context, teamID, requesterID string) (*domain.Team, error) {
	t, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if _, ok := t.Member(requesterID); !ok {
		return nil, ErrNotTeamMember
	}
	return t, nil
}

// GetMyTeam returns the team the requester belongs to.
func (s *TeamService) GetMyTeam(ctx context.Context, requesterID string) (*domain.Team, error) {
	u, err := s.store.GetUser(ctx, requesterID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !u.HasTeam() {
		return nil, ErrNoTeam
	}

	t, err := s.store.GetTeam(ctx, *u.TeamID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}
