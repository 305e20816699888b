// Package repository defines storage interfaces implemented by concrete backends.
//
// Backends persist two logical keys: the users document (the whole collection,
// serialized as a JSON array) and the session pointer (an email or empty).
// Every write replaces the whole value, so readers never observe a partial
// collection.
package repository

import (
	"context"

	"github.com/ecostep/ecostep/internal/model"
)

// Logical keys shared by the key-value backends.
const (
	KeyUsers   = "users"
	KeySession = "session"
)

// UserRepository loads and stores the full user collection.
type UserRepository interface {
	// LoadUsers returns every stored user in insertion order. A missing
	// document yields an empty collection.
	LoadUsers(ctx context.Context) ([]model.User, error)
	// SaveUsers replaces the stored collection.
	SaveUsers(ctx context.Context, users []model.User) error
}

// Store is the full persistence contract consumed by the account service.
type Store interface {
	UserRepository
	SessionRepository
}
