package domain

import "errors"

// Sentinel errors returned by services. Wrap with fmt.Errorf("%w: ...") to add detail.
var (
	// ErrValidation is returned for missing or malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a slug or email is already taken.
	ErrConflict = errors.New("already in use")

	// ErrNotFound is returned when no link matches a slug.
	ErrNotFound = errors.New("link not found")

	// ErrUnauthorized is returned for bad login credentials.
	ErrUnauthorized = errors.New("invalid credentials")
)
