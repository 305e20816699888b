package repository

import "context"

// SessionRepository persists the single session pointer.
type SessionRepository interface {
	// Session returns the current session email, or "" when nobody is logged in.
	Session(ctx context.Context) (string, error)
	// SetSession stores email as the session pointer; "" clears it.
	SetSession(ctx context.Context, email string) error
}
