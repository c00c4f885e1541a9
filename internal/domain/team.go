package domain

import "time"

// Team is a named group with one owner and an ordered list of members.
type Team struct {
	TeamID    string       `json:"team_id"`
	Name      string       `json:"name"`
	OwnerID   string       `json:"owner_id"`
	Members   []TeamMember `json:"members"`
	CreatedAt time.Time    `json:"created_at"`
}

// TeamMember represents a user within a team.
type TeamMember struct {
	UserID            string           `json:"user_id"`
	Email             string           `json:"email"`
	Name              string           `json:"name"`
	Role              MemberRole       `json:"role"`
	InvitationStatus  InvitationStatus `json:"invitation_status"`
	PaymentProfileRef *string          `json:"-"`
}

// Member returns the member row for userID.
func (t *Team) Member(userID string) (TeamMember, bool) {
	for _, m := range t.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return TeamMember{}, false
}

// IsOwner reports whether userID owns the team.
func (t *Team) IsOwner(userID string) bool {
	return t.OwnerID == userID
}

// CanManage reports whether userID is the owner or an admin member.
func (t *Team) CanManage(userID string) bool {
	if t.IsOwner(userID) {
		return true
	}
	m, ok := t.Member(userID)
	return ok && m.Role == RoleAdmin
}

// Owner returns the owner's member row.
func (t *Team) Owner() (TeamMember, bool) {
	return t.Member(t.OwnerID)
}
