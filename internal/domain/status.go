package domain

import (
	"database/sql/driver"
	"fmt"
)

// InvitationStatus tracks whether a user has joined a team.
type InvitationStatus string

// Invitation status constants.
const (
	InvitationNone     InvitationStatus = "none"
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

// NewInvitationStatus creates a new InvitationStatus with validation.
func NewInvitationStatus(s string) (InvitationStatus, error) {
	status := InvitationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid invitation status: %s", s)
	}
	return status, nil
}

// IsValid checks if the status is one of the known values.
func (s InvitationStatus) IsValid() bool {
	switch s {
	case InvitationNone, InvitationPending, InvitationAccepted, InvitationRejected:
		return true
	}
	return false
}

// IsMemberStatus reports whether the status may appear on a team member row.
func (s InvitationStatus) IsMemberStatus() bool {
	return s != InvitationNone && s.IsValid()
}

// Scan implements sql.Scanner. NULL scans as InvitationNone.
func (s *InvitationStatus) Scan(value any) error {
	if value == nil {
		*s = InvitationNone
		return nil
	}
	str, err := scanString(value, "InvitationStatus")
	if err != nil {
		return err
	}
	status, err := NewInvitationStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// Value implements driver.Valuer.
func (s InvitationStatus) Value() (driver.Value, error) {
	if s == "" {
		return string(InvitationNone), nil
	}
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid InvitationStatus value: %s", s)
	}
	return string(s), nil
}

// MemberRole is the role of a member inside a team.
type MemberRole string

// Member role constants.
const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// IsValid checks if the role is valid.
func (r MemberRole) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Scan implements sql.Scanner.
func (r *MemberRole) Scan(value any) error {
	if value == nil {
		return fmt.Errorf("MemberRole cannot be NULL")
	}
	str, err := scanString(value, "MemberRole")
	if err != nil {
		return err
	}
	role := MemberRole(str)
	if !role.IsValid() {
		return fmt.Errorf("invalid member role: %s", str)
	}
	*r = role
	return nil
}

// Value implements driver.Valuer.
func (r MemberRole) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("invalid MemberRole value: %s", r)
	}
	return string(r), nil
}

func scanString(value any, typeName string) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot scan %T into %s", value, typeName)
	}
}
