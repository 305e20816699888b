// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Account sentinels.
var (
	// ErrValidation indicates a required field is empty or absent.
	ErrValidation = errors.New("validation: all fields are required")

	// ErrDuplicateEmail indicates the email is already registered (case-insensitive).
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrMissingCredentials indicates email or password was not supplied.
	ErrMissingCredentials = errors.New("email and password required")

	// ErrInvalidCredentials indicates failed authentication. Unknown email and
	// wrong password are reported identically.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotLoggedIn indicates a mutating operation without an active session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Scoring sentinels.
var (
	// ErrIncompleteAnswer indicates a quiz category was left unanswered.
	ErrIncompleteAnswer = errors.New("incomplete answer")

	// ErrAnswerOutOfRange indicates a category value outside the 0..3 scale.
	ErrAnswerOutOfRange = errors.New("answer out of range")
)

// Storage sentinels.
var (
	// ErrNotFound indicates the requested key does not exist in the backend.
	ErrNotFound = errors.New("not found")
)
