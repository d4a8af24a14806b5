package models

import "errors"

// Sentinel errors classifying why an action was declined. Services wrap
// these with fmt.Errorf("...: %w", ...) so callers can classify with
// errors.Is while still getting a full message for rendering.
var (
	// ErrValidation covers malformed input: non-positive amounts,
	// out-of-range pockets, bad numeric strings.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized covers a caller acting outside their role, such as
	// a non-admin invoking a privileged operation or the wrong user
	// responding to a challenge.
	ErrUnauthorized = errors.New("not authorized")

	// ErrInvalidState covers actions that are valid in general but not in
	// the entity's current state: hitting an ended game, joining a
	// started table, entering an inactive lottery.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict covers uniqueness violations: duplicate account,
	// duplicate lottery entry, double reservation, double resolution.
	ErrConflict = errors.New("conflict")

	// ErrInsufficientFunds is returned when an adjustment would drive a
	// balance negative. The balance is left unchanged.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotFound covers unknown accounts, tables, rounds and sessions.
	ErrNotFound = errors.New("not found")
)
