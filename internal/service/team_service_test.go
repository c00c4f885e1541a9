package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
	"github.com/mishasvintus/delivery_team_backend/internal/logger"
)

type teamFixture struct {
	store     *memStore
	mail      *fakeMailer
	publisher *fakePublisher
	svc       *TeamService
}

func newTeamFixture(t *testing.T) *teamFixture {
	t.Helper()

	store := newMemStore()
	store.addUser("owner", "owner@example.com", "Olivia", nil)
	store.addUser("alice", "alice@example.com", "Alice", nil)
	store.addUser("bob", "bob@example.com", "Bob", nil)
	store.addUser("carol", "carol@example.com", "Carol", nil)

	mail := &fakeMailer{}
	publisher := &fakePublisher{}
	notifications := NewNotificationService(store, publisher, logger.Discard())

	svc := NewTeamService(store, mail, notifications, logger.Discard(), "https://app.example.com")
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("team-%d", n)
	}

	return &teamFixture{store: store, mail: mail, publisher: publisher, svc: svc}
}

// requireMembershipInvariants checks the team/user invariants over the whole store.
func requireMembershipInvariants(t *testing.T, store *memStore) {
	t.Helper()

	listed := make(map[string]domain.TeamMember)
	listedIn := make(map[string]string)
	for _, team := range store.allTeams() {
		owner, ok := team.Owner()
		require.True(t, ok, "team %s lost its owner", team.TeamID)
		assert.Equal(t, domain.RoleAdmin, owner.Role)
		assert.Equal(t, domain.InvitationAccepted, owner.InvitationStatus)

		for _, m := range team.Members {
			_, dup := listedIn[m.UserID]
			require.False(t, dup, "user %s listed in more than one team", m.UserID)
			listed[m.UserID] = m
			listedIn[m.UserID] = team.TeamID
		}
	}

	for _, u := range store.allUsers() {
		m, ok := listed[u.UserID]
		if !ok {
			assert.Nil(t, u.TeamID, "user %s points at a team that does not list them", u.UserID)
			assert.Equal(t, domain.InvitationNone, u.InvitationStatus)
			assert.False(t, u.IsAdmin)
			continue
		}
		require.NotNil(t, u.TeamID, "user %s is listed but has no team reference", u.UserID)
		assert.Equal(t, listedIn[u.UserID], *u.TeamID)
		assert.Equal(t, m.InvitationStatus, u.InvitationStatus)
	}
}

func lastMessage(t *testing.T, store *memStore, userID string) string {
	t.Helper()
	ns := store.notificationsFor(userID)
	require.NotEmpty(t, ns, "no notifications for %s", userID)
	return ns[len(ns)-1].Message
}

func TestTeamService_CreateTeam(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(*teamFixture)
		requesterID   string
		teamName      string
		expectedError error
	}{
		{
			name:        "success - requester becomes owner",
			requesterID: "owner",
			teamName:    "Couriers",
		},
		{
			name:          "error - requester already has a team",
			setup:         func(f *teamFixture) { f.store.seedTeam("existing", "Existing", "owner") },
			requesterID:   "owner",
			teamName:      "Couriers",
			expectedError: ErrAlreadyInTeam,
		},
		{
			name: "error - pending invitee cannot create a team",
			setup: func(f *teamFixture) {
				f.store.seedTeam("existing", "Existing", "owner",
					memberRow{userID: "alice", role: domain.RoleMember, status: domain.InvitationPending})
			},
			requesterID:   "alice",
			teamName:      "Mine",
			expectedError: ErrConflict,
		},
		{
			name:          "error - empty name",
			requesterID:   "owner",
			teamName:      "   ",
			expectedError: ErrValidation,
		},
		{
			name:          "error - unknown requester",
			requesterID:   "ghost",
			teamName:      "Couriers",
			expectedError: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTeamFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			team, err := f.svc.CreateTeam(context.Background(), tt.requesterID, tt.teamName)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, team)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "team-1", team.TeamID)
				assert.Equal(t, tt.teamName, team.Name)
				require.Len(t, team.Members, 1)
				assert.Equal(t, tt.requesterID, team.Members[0].UserID)
				assert.Equal(t, domain.RoleAdmin, team.Members[0].Role)
				assert.Equal(t, domain.InvitationAccepted, team.Members[0].InvitationStatus)

				owner := f.store.user(tt.requesterID)
				require.NotNil(t, owner.TeamID)
				assert.Equal(t, team.TeamID, *owner.TeamID)
				assert.True(t, owner.IsAdmin)
				assert.Equal(t, domain.InvitationAccepted, owner.InvitationStatus)

				assert.Equal(t, `You have been added to team "Couriers"`, lastMessage(t, f.store, tt.requesterID))
			}
			requireMembershipInvariants(t, f.store)
		})
	}
}

func TestTeamService_CreateTeam_RollsBackOnFailure(t *testing.T) {
	f := newTeamFixture(t)
	f.store.failOn = "SetUserMembership"

	_, err := f.svc.CreateTeam(context.Background(), "owner", "Couriers")
	require.ErrorIs(t, err, errTestStore)

	assert.False(t, f.store.hasTeam("team-1"))
	assert.Nil(t, f.store.user("owner").TeamID)
	assert.Empty(t, f.store.notificationsFor("owner"))
	requireMembershipInvariants(t, f.store)
}

func TestTeamService_Invite(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(*teamFixture)
		teamID         string
		requesterID    string
		email          string
		expectedError  error
		expectedResult *InviteResult
		validate       func(*testing.T, *teamFixture)
	}{
		{
			name:           "success - existing user becomes pending member",
			teamID:         "t1",
			requesterID:    "owner",
			email:          "alice@example.com",
			expectedResult: &InviteResult{MemberAdded: true, EmailSent: true, Message: InviteMessageAdded},
			validate: func(t *testing.T, f *teamFixture) {
				team, err := f.store.GetTeam(context.Background(), "t1")
				require.NoError(t, err)
				m, ok := team.Member("alice")
				require.True(t, ok)
				assert.Equal(t, domain.RoleMember, m.Role)
				assert.Equal(t, domain.InvitationPending, m.InvitationStatus)

				alice := f.store.user("alice")
				require.NotNil(t, alice.TeamID)
				assert.Equal(t, "t1", *alice.TeamID)
				assert.Equal(t, domain.InvitationPending, alice.InvitationStatus)
				assert.False(t, alice.IsAdmin)

				require.Len(t, f.mail.sent, 1)
				assert.Equal(t, "alice@example.com", f.mail.sent[0].To)
				assert.Contains(t, f.mail.sent[0].Text, "https://app.example.com/team-invitation?")
				assert.Contains(t, f.mail.sent[0].Text, "Olivia has invited you")

				assert.Equal(t, `You have been invited to join team "Couriers"`, lastMessage(t, f.store, "alice"))
			},
		},
		{
			name: "success - admin member may invite",
			setup: func(f *teamFixture) {
				f.store.seedTeam("t2", "Dispatch", "carol",
					memberRow{userID: "bob", role: domain.RoleAdmin, status: domain.InvitationAccepted})
			},
			teamID:         "t2",
			requesterID:    "bob",
			email:          "alice@example.com",
			expectedResult: &InviteResult{MemberAdded: true, EmailSent: true, Message: InviteMessageAdded},
		},
		{
			name:           "success - unknown email only gets an email",
			teamID:         "t1",
			requesterID:    "owner",
			email:          "new@example.com",
			expectedResult: &InviteResult{EmailSent: true, Message: InviteMessageSent},
			validate: func(t *testing.T, f *teamFixture) {
				team, err := f.store.GetTeam(context.Background(), "t1")
				require.NoError(t, err)
				assert.Len(t, team.Members, 1)
				require.Len(t, f.mail.sent, 1)
				assert.Equal(t, "new@example.com", f.mail.sent[0].To)
			},
		},
		{
			name:          "error - team not found",
			teamID:        "missing",
			requesterID:   "owner",
			email:         "alice@example.com",
			expectedError: ErrTeamNotFound,
		},
		{
			name:          "error - requester is not in the team",
			teamID:        "t1",
			requesterID:   "carol",
			email:         "alice@example.com",
			expectedError: ErrForbidden,
		},
		{
			name: "error - plain member cannot invite",
			setup: func(f *teamFixture) {
				f.store.seedTeam("t2", "Dispatch", "carol",
					memberRow{userID: "bob", role: domain.RoleMember, status: domain.InvitationAccepted})
			},
			teamID:        "t2",
			requesterID:   "bob",
			email:         "alice@example.com",
			expectedError: ErrNotTeamAdmin,
		},
		{
			name: "error - user already belongs to another team",
			setup: func(f *teamFixture) {
				f.store.seedTeam("t2", "Dispatch", "carol")
			},
			teamID:        "t1",
			requesterID:   "owner",
			email:         "carol@example.com",
			expectedError: ErrAlreadyInTeam,
		},
		{
			name:          "error - empty email",
			teamID:        "t1",
			requesterID:   "owner",
			email:         " ",
			expectedError: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTeamFixture(t)
			f.store.seedTeam("t1", "Couriers", "owner")
			if tt.setup != nil {
				tt.setup(f)
			}

			result, err := f.svc.Invite(context.Background(), tt.teamID, tt.requesterID, tt.email, "")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
				assert.Empty(t, f.mail.sent)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedResult, result)
			}
			if tt.validate != nil {
				tt.validate(t, f)
			}
			requireMembershipInvariants(t, f.store)
		})
	}
}

func TestTeamService_Invite_ExistingMemberReportsStatus(t *testing.T) {
	for _, status := range []domain.InvitationStatus{domain.InvitationPending, domain.InvitationAccepted, domain.InvitationRejected} {
		t.Run(string(status), func(t *testing.T) {
			f := newTeamFixture(t)
			f.store.seedTeam("t1", "Couriers", "owner",
				memberRow{userID: "alice", role: domain.RoleMember, status: status})

			_, err := f.svc.Invite(context.Background(), "t1", "owner", "alice@example.com", "Alice")

			require.ErrorIs(t, err, ErrConflict)
			var exists *MembershipExistsError
			require.True(t, errors.As(err, &exists))
			assert.Equal(t, status, exists.Status)
			assert.Equal(t, "user is already a member with status: "+string(status), err.Error())
		})
	}
}

func TestTeamService_Invite_EmailFailure(t *testing.T) {
	t.Run("existing user keeps the membership", func(t *testing.T) {
		f := newTeamFixture(t)
		f.store.seedTeam("t1", "Couriers", "owner")
		f.mail.err = errors.New("smtp down")

		result, err := f.svc.Invite(context.Background(), "t1", "owner", "alice@example.com", "Alice")

		require.NoError(t, err)
		assert.Equal(t, &InviteResult{MemberAdded: true, Message: InviteMessageEmailFailed}, result)
		assert.Equal(t, domain.InvitationPending, f.store.user("alice").InvitationStatus)
		requireMembershipInvariants(t, f.store)
	})

	t.Run("unknown email fails", func(t *testing.T) {
		f := newTeamFixture(t)
		f.store.seedTeam("t1", "Couriers", "owner")
		f.mail.err = errors.New("smtp down")

		result, err := f.svc.Invite(context.Background(), "t1", "owner", "new@example.com", "")

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "smtp down")
	})
}

func TestTeamService_AnswerInvitation(t *testing.T) {
	tests := []struct {
		name          string
		status        domain.InvitationStatus
		teamID        string
		email         string
		reject        bool
		expectedError error
	}{
		{name: "accept pending", status: domain.InvitationPending, teamID: "t1", email: "alice@example.com"},
		{name: "reject pending", status: domain.InvitationPending, teamID: "t1", email: "alice@example.com", reject: true},
		{name: "accept twice", status: domain.InvitationAccepted, teamID: "t1", email: "alice@example.com", expectedError: ErrInvalidState},
		{name: "accept after reject", status: domain.InvitationRejected, teamID: "t1", email: "alice@example.com", expectedError: ErrInvalidState},
		{name: "reject accepted", status: domain.InvitationAccepted, teamID: "t1", email: "alice@example.com", reject: true, expectedError: ErrInvalidState},
		{name: "no row for user", status: domain.InvitationPending, teamID: "t1", email: "bob@example.com", expectedError: ErrNoPendingInvitation},
		{name: "team not found", status: domain.InvitationPending, teamID: "missing", email: "alice@example.com", expectedError: ErrTeamNotFound},
		{name: "user not found", status: domain.InvitationPending, teamID: "t1", email: "ghost@example.com", expectedError: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTeamFixture(t)
			f.store.seedTeam("t1", "Couriers", "owner",
				memberRow{userID: "alice", role: domain.RoleMember, status: tt.status})

			var err error
			if tt.reject {
				err = f.svc.RejectInvitation(context.Background(), tt.teamID, tt.email)
			} else {
				err = f.svc.AcceptInvitation(context.Background(), tt.teamID, tt.email)
			}

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Equal(t, tt.status, f.store.user("alice").InvitationStatus)
			} else {
				require.NoError(t, err)
				alice := f.store.user("alice")
				team, err := f.store.GetTeam(context.Background(), "t1")
				require.NoError(t, err)
				m, listed := team.Member("alice")

				if tt.reject {
					assert.False(t, listed)
					assert.Nil(t, alice.TeamID)
					assert.Equal(t, domain.InvitationNone, alice.InvitationStatus)
					assert.Equal(t, `An invitation to team "Couriers" was declined`, lastMessage(t, f.store, "owner"))
				} else {
					require.True(t, listed)
					assert.Equal(t, domain.InvitationAccepted, m.InvitationStatus)
					require.NotNil(t, alice.TeamID)
					assert.Equal(t, "t1", *alice.TeamID)
					assert.Equal(t, domain.InvitationAccepted, alice.InvitationStatus)
					assert.Equal(t, `New member has been added to team "Couriers"`, lastMessage(t, f.store, "owner"))
				}
			}
			requireMembershipInvariants(t, f.store)
		})
	}
}

func TestTeamService_RejectInvitation_FreesTheUser(t *testing.T) {
	ctx := context.Background()

	t.Run("can create a team", func(t *testing.T) {
		f := newTeamFixture(t)
		f.store.seedTeam("t1", "Couriers", "owner",
			memberRow{userID: "alice", role: domain.RoleMember, status: domain.InvitationPending})
		require.NoError(t, f.svc.RejectInvitation(ctx, "t1", "alice@example.com"))

		team, err := f.svc.CreateTeam(ctx, "alice", "Riders")
		require.NoError(t, err)
		assert.Equal(t, "alice", team.OwnerID)
		requireMembershipInvariants(t, f.store)
	})

	t.Run("can be invited by another team", func(t *testing.T) {
		f := newTeamFixture(t)
		f.store.seedTeam("t1", "Couriers", "owner",
			memberRow{userID: "alice", role: domain.RoleMember, status: domain.InvitationPending})
		f.store.seedTeam("t2", "Riders", "bob")
		require.NoError(t, f.svc.RejectInvitation(ctx, "t1", "alice@example.com"))

		result, err := f.svc.Invite(ctx, "t2", "bob", "alice@example.com", "Alice")
		require.NoError(t, err)
		assert.True(t, result.MemberAdded)
		require.NotNil(t, f.store.user("alice").TeamID)
		assert.Equal(t, "t2", *f.store.user("alice").TeamID)
		requireMembershipInvariants(t, f.store)
	})

	t.Run("can be invited again by the same team", func(t *testing.T) {
		f := newTeamFixture(t)
		f.store.seedTeam("t1", "Couriers", "owner",
			memberRow{userID: "alice", role: domain.RoleMember, status: domain.InvitationPending})
		require.NoError(t, f.svc.RejectInvitation(ctx, "t1", "alice@example.com"))

		_, err := f.svc.Invite(ctx, "t1", "owner", "alice@example.com", "Alice")
		require.NoError(t, err)
		require.NoError(t, f.svc.AcceptInvitation(ctx, "t1", "alice@example.com"))
		assert.Equal(t, domain.InvitationAccepted, f.store.user("alice").InvitationStatus)
		requireMembershipInvariants(t, f.store)
	})

	t.Run("no longer draws on the owner's card", func(t *testing.T) {
		f := newTeamFixture(t)
		f.store.addUser("owner", "owner@example.com", "Olivia", strPtr("cus_owner"))
		_, err := f.svc.CreateTeam(ctx, "owner", "Couriers")
		require.NoError(t, err)
		_, err = f.svc.Invite(ctx, "team-1", "owner", "alice@example.com", "Alice")
		require.NoError(t, err)
		require.NoError(t, f.svc.RejectInvitation(ctx, "team-1", "alice@example.com"))

		provider := newFakeProvider()
		provider.cards["cus_owner"] = []domain.PaymentMethod{card("pm_owner")}
		resolver := NewPaymentResolver(f.store, provider, logger.Discard(), time.Second)

		resolved, err := resolver.ResolvePaymentMethod(ctx, "alice")
		assert.ErrorIs(t, err, ErrNoPaymentMethod)
		assert.Nil(t, resolved)
	})
}

func TestTeamService_AcceptInvitation_SecondCallFails(t *testing.T) {
	f := newTeamFixture(t)
	f.store.seedTeam("t1", "Couriers", "owner",
		memberRow{userID: "alice", role: domain.RoleMember, status: domain.InvitationPending})

	require.NoError(t, f.svc.AcceptInvitation(context.Background(), "t1", "alice@example.com"))

	err := f.svc.AcceptInvitation(context.Background(), "t1", "alice@example.com")
	var stateErr *InvitationStateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, domain.InvitationAccepted, stateErr.Status)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTeamService_RemoveMember(t *testing.T) {
	tests := []struct {
		name          string
		teamID        string
		requesterID   string
		targetID      string
		expectedError error
	}{
		{name: "owner removes accepted member", teamID: "t1", requesterID: "owner", targetID: "alice"},
		{name: "owner removes pending member", teamID: "t1", requesterID: "owner", targetID: "bob"},
		{name: "admin member removes member", teamID: "t1", requesterID: "carol", targetID: "alice"},
		{name: "team not found", teamID: "missing", requesterID: "owner", targetID: "alice", expectedError: ErrTeamNotFound},
		{name: "plain member forbidden", teamID: "t1", requesterID: "alice", targetID: "bob", expectedError: ErrForbidden},
		{name: "owner removes self", teamID: "t1", requesterID: "owner", targetID: "owner", expectedError: ErrInvalidOperation},
		{name: "admin removes owner", teamID: "t1", requesterID: "carol", targetID: "owner", expectedError: ErrCannotRemoveOwner},
		{name: "target not a member", teamID: "t1", requesterID: "owner", targetID: "ghost", expectedError: ErrMemberNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTeamFixture(t)
			f.store.seedTeam("t1", "Couriers", "owner",
				memberRow{userID: "alice", role: domain.RoleMember, status: domain.InvitationAccepted},
				memberRow{userID: "bob", role: domain.RoleMember, status: domain.InvitationPending},
				memberRow{userID: "carol", role: domain.RoleAdmin, status: domain.InvitationAccepted},
			)

			err := f.svc.RemoveMember(context.Background(), tt.teamID, tt.requesterID, tt.targetID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)

				team, err := f.store.GetTeam(context.Background(), "t1")
				require.NoError(t, err)
				_, ok := team.Member(tt.targetID)
				assert.False(t, ok)

				target := f.store.user(tt.targetID)
				assert.Nil(t, target.TeamID)
				assert.Equal(t, domain.InvitationNone, target.InvitationStatus)

				assert.Equal(t, `You have been removed from team "Couriers"`, lastMessage(t, f.store, tt.targetID))
				assert.Equal(t, `A member has been removed from team "Couriers"`, lastMessage(t, f.store, tt.requesterID))
			}
			requireMembershipInvariants(t, f.store)
		})
	}
}

func TestTeamService_DeleteTeam(t *testing.T) {
	tests := []struct {
		name          string
		teamID        string
		requesterID   string
		expectedError error
	}{
		{name: "owner deletes", teamID: "t1", requesterID: "owner"},
		{name: "admin member cannot delete", teamID: "t1", requesterID: "carol", expectedError: ErrNotTeamOwner},
		{name: "team not found", teamID: "missing", requesterID: "owner", expectedError: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTeamFixture(t)
			f.store.seedTeam("t1", "Couriers", "owner",
				memberRow{userID: "alice", role: domain.RoleMember, status: domain.InvitationPending},
				memberRow{userID: "carol", role: domain.RoleAdmin, status: domain.InvitationAccepted},
			)

			err := f.svc.DeleteTeam(context.Background(), tt.teamID, tt.requesterID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.True(t, f.store.hasTeam("t1"))
			} else {
				require.NoError(t, err)
				assert.False(t, f.store.hasTeam("t1"))
				for _, id := range []string{"owner", "alice", "carol"} {
					u := f.store.user(id)
					assert.Nil(t, u.TeamID, id)
					assert.Equal(t, domain.InvitationNone, u.InvitationStatus, id)
					assert.False(t, u.IsAdmin, id)
				}
				assert.Equal(t, `Team "Couriers" has been deleted`, lastMessage(t, f.store, "alice"))
				assert.Empty(t, f.store.notificationsFor("owner"))
			}
			requireMembershipInvariants(t, f.store)
		})
	}
}

func TestTeamService_DeleteTeam_RollsBackOnFailure(t *testing.T) {
	f := newTeamFixture(t)
	f.store.seedTeam("t1", "Couriers", "owner",
		memberRow{userID: "alice", role: domain.RoleMember, status: domain.InvitationAccepted})
	f.store.failOn = "DeleteTeam"

	err := f.svc.DeleteTeam(context.Background(), "t1", "owner")
	require.ErrorIs(t, err, errTestStore)

	assert.True(t, f.store.hasTeam("t1"))
	require.NotNil(t, f.store.user("alice").TeamID)
	requireMembershipInvariants(t, f.store)
}

func TestTeamService_GetTeam(t *testing.T) {
	f := newTeamFixture(t)
	f.store.seedTeam("t1", "Couriers", "owner",
		memberRow{userID: "alice", role: domain.RoleMember, status: domain.InvitationPending})

	team, err := f.svc.GetTeam(context.Background(), "t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Couriers", team.Name)
	require.Len(t, team.Members, 2)
	assert.Equal(t, "owner", team.Members[0].UserID)
	assert.Equal(t, "alice", team.Members[1].UserID)
	assert.Equal(t, "alice@example.com", team.Members[1].Email)

	_, err = f.svc.GetTeam(context.Background(), "t1", "bob")
	assert.ErrorIs(t, err, ErrNotTeamMember)

	_, err = f.svc.GetTeam(context.Background(), "missing", "alice")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestTeamService_GetMyTeam(t *testing.T) {
	f := newTeamFixture(t)
	f.store.seedTeam("t1", "Couriers", "owner")

	team, err := f.svc.GetMyTeam(context.Background(), "owner")
	require.NoError(t, err)
	assert.Equal(t, "t1", team.TeamID)

	_, err = f.svc.GetMyTeam(context.Background(), "bob")
	assert.ErrorIs(t, err, ErrNoTeam)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.GetMyTeam(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTeamService_MembershipLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newTeamFixture(t)

	team, err := f.svc.CreateTeam(ctx, "owner", "Couriers")
	require.NoError(t, err)
	requireMembershipInvariants(t, f.store)

	result, err := f.svc.Invite(ctx, team.TeamID, "owner", "alice@example.com", "Alice")
	require.NoError(t, err)
	assert.True(t, result.MemberAdded)
	requireMembershipInvariants(t, f.store)

	alice := f.store.user("alice")
	require.NotNil(t, alice.TeamID)
	assert.Equal(t, team.TeamID, *alice.TeamID)
	assert.Equal(t, domain.InvitationPending, alice.InvitationStatus)

	require.NoError(t, f.svc.AcceptInvitation(ctx, team.TeamID, "alice@example.com"))
	requireMembershipInvariants(t, f.store)
	assert.Equal(t, domain.InvitationAccepted, f.store.user("alice").InvitationStatus)

	got, err := f.store.GetTeam(ctx, team.TeamID)
	require.NoError(t, err)
	m, ok := got.Member("alice")
	require.True(t, ok)
	assert.Equal(t, domain.InvitationAccepted, m.InvitationStatus)

	require.NoError(t, f.svc.RemoveMember(ctx, team.TeamID, "owner", "alice"))
	requireMembershipInvariants(t, f.store)

	alice = f.store.user("alice")
	assert.Nil(t, alice.TeamID)
	assert.Equal(t, domain.InvitationNone, alice.InvitationStatus)

	got, err = f.store.GetTeam(ctx, team.TeamID)
	require.NoError(t, err)
	require.Len(t, got.Members, 1)
	assert.Equal(t, "owner", got.Members[0].UserID)
	assert.Equal(t, domain.RoleAdmin, got.Members[0].Role)
	assert.True(t, f.store.user("owner").IsAdmin)

	// A removed user can be invited again.
	_, err = f.svc.Invite(ctx, team.TeamID, "owner", "alice@example.com", "Alice")
	require.NoError(t, err)
	requireMembershipInvariants(t, f.store)
}
