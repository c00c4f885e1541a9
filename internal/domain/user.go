package domain

import "time"

// User is an account that can own or join at most one team.
type User struct {
	UserID            string           `json:"user_id"`
	Email             string           `json:"email"`
	Name              string           `json:"name"`
	TeamID            *string          `json:"team_id,omitempty"`
	InvitationStatus  InvitationStatus `json:"invitation_status"`
	IsAdmin           bool             `json:"is_admin"`
	PaymentProfileRef *string          `json:"-"`
	CreatedAt         time.Time        `json:"created_at"`
}

// HasTeam reports whether the user holds a team back-reference.
func (u *User) HasTeam() bool {
	return u.TeamID != nil && *u.TeamID != ""
}

// DisplayName returns the name, falling back to the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// UserMembership is the team back-reference stored on a user record.
type UserMembership struct {
	TeamID           *string
	InvitationStatus InvitationStatus
	IsAdmin          bool
}

// NoMembership clears the team back-reference.
func NoMembership() UserMembership {
	return UserMembership{InvitationStatus: InvitationNone}
}
