package service

import (
	"errors"
	"fmt"

	"github.com/mishasvintus/delivery_team_backend/internal/domain"
)

// Error kinds. Callers match on these with errors.Is.
var (
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
	ErrConflict                = errors.New("conflict")
	ErrInvalidState            = errors.New("invalid state")
	ErrInvalidOperation        = errors.New("invalid operation")
	ErrValidation              = errors.New("validation failed")
	ErrNoPaymentMethod         = errors.New("no payment method available")
	ErrPaymentFailed           = errors.New("payment failed")
	ErrNotificationUndelivered = errors.New("notification undelivered")
)

var (
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrTeamNotFound         = fmt.Errorf("team %w", ErrNotFound)
	ErrMemberNotFound       = fmt.Errorf("member %w in team", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrBookingNotFound      = fmt.Errorf("booking %w", ErrNotFound)
	ErrNoTeam               = fmt.Errorf("team %w: user does not belong to any team", ErrNotFound)

	ErrAlreadyInTeam      = fmt.Errorf("%w: user already belongs to a team", ErrConflict)
	ErrBookingAlreadyPaid = fmt.Errorf("%w: booking is already paid", ErrConflict)

	ErrNotTeamAdmin    = fmt.Errorf("%w: requester is not a team owner or admin", ErrForbidden)
	ErrNotTeamOwner    = fmt.Errorf("%w: requester is not the team owner", ErrForbidden)
	ErrNotTeamMember   = fmt.Errorf("%w: requester is not a member of this team", ErrForbidden)
	ErrNotBookingOwner = fmt.Errorf("%w: booking belongs to another user", ErrForbidden)
	ErrMethodNotOwned  = fmt.Errorf("%w: payment method does not belong to this user", ErrForbidden)

	ErrNoPendingInvitation = fmt.Errorf("%w: no pending invitation found", ErrInvalidState)

	ErrCannotRemoveOwner = fmt.Errorf("%w: cannot remove the team owner", ErrInvalidOperation)
	ErrChargeMismatch    = fmt.Errorf("%w: charge does not belong to this booking", ErrInvalidOperation)
	ErrNoPaymentProfile  = fmt.Errorf("%w: user has no payment customer", ErrInvalidOperation)
)

// MembershipExistsError reports an invite for a user already listed in the team.
type MembershipExistsError struct {
	Status domain.InvitationStatus
}

func (e *MembershipExistsError) Error() string {
	return fmt.Sprintf("user is already a member with status: %s", e.Status)
}

func (e *MembershipExistsError) Unwrap() error { return ErrConflict }

// InvitationStateError reports a transition attempted from a non-pending row.
type InvitationStateError struct {
	Status domain.InvitationStatus
}

func (e *InvitationStateError) Error() string {
	return fmt.Sprintf("invitation status is %s, not pending", e.Status)
}

func (e *InvitationStateError) Unwrap() error { return ErrInvalidState }

// PaymentFailedError carries the provider's failure message.
type PaymentFailedError struct {
	Message string
	Err     error
}

func (e *PaymentFailedError) Error() string {
	return "payment failed: " + e.Message
}

func (e *PaymentFailedError) Is(target error) bool { return target == ErrPaymentFailed }

func (e *PaymentFailedError) Unwrap() error { return e.Err }

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
