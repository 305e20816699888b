// Package memory contains an in-process implementation of repository.Store.
package memory

import (
	"context"
	"sync"

	"github.com/ecostep/ecostep/internal/model"
	"github.com/ecostep/ecostep/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps the serialized users document and the session pointer in memory.
// The zero value is ready to use.
type Store struct {
	mu      sync.RWMutex
	users   []byte
	session string
}

// New returns an empty store.
func New() *Store { return &Store{} }

// LoadUsers decodes the stored document into a fresh collection.
func (s *Store) LoadUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return repository.DecodeUsers(s.users)
}

// SaveUsers replaces the stored document.
func (s *Store) SaveUsers(_ context.Context, users []model.User) error {
	b, err := repository.EncodeUsers(users)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.users = b
	s.mu.Unlock()
	return nil
}

// Session returns the session pointer.
func (s *Store) Session(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, nil
}

// SetSession replaces the session pointer.
func (s *Store) SetSession(_ context.Context, email string) error {
	s.mu.Lock()
	s.session = email
	s.mu.Unlock()
	return nil
}

// Raw returns a copy of the serialized users document.
func (s *Store) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.users...)
}
