package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates missing or malformed input. Nothing remote has been touched.
	ErrValidation = errors.New("validation failed")
	// ErrAuthRequired indicates an action that needs a signed-in user was attempted anonymously.
	ErrAuthRequired = errors.New("authentication required")
	// ErrNotFound indicates the record does not exist or was already deleted.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden indicates the user is signed in but may not perform the action.
	ErrForbidden = errors.New("action forbidden")
	// ErrConflict indicates the write clashes with existing state.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates a failed sign-in.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrRemote wraps any failure of the database, blob store, cache or broker.
	ErrRemote = errors.New("remote operation failed")
)

// Remote marks err as a collaborator failure while keeping it in the chain.
func Remote(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRemote, op, err)
}

// Invalid builds an ErrValidation with a user-facing reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
