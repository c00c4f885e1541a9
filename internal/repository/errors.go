package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Constraint failures, returned wrapped by the insert functions.
var (
	ErrDuplicate        = errors.New("row already exists")
	ErrMissingReference = errors.New("referenced row does not exist")
)

// IsUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
// PostgreSQL error code 23505 = unique_violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
// PostgreSQL error code 23503 = foreign_key_violation.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}

// WrapWrite wraps a failed insert as "failed to <action>", tagging unique and
// foreign key violations with ErrDuplicate or ErrMissingReference.
func WrapWrite(action string, err error) error {
	switch {
	case IsUniqueViolation(err):
		return fmt.Errorf("failed to %s: %w: %w", action, ErrDuplicate, err)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("failed to %s: %w: %w", action, ErrMissingReference, err)
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}
