// Package file stores the users document and session pointer as plain files
// inside a data directory.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/ecostep/ecostep/internal/model"
	"github.com/ecostep/ecostep/internal/repository"
)

var _ repository.Store = (*Store)(nil)

const (
	usersFile   = "users.json"
	sessionFile = "session"
)

// Store is a directory-backed repository.Store. Writes go through a temp file
// and rename, so a crash never leaves a truncated document behind.
type Store struct {
	dir string
}

// New creates dir (0700) if needed and returns a store rooted there.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("file store: empty directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) read(name string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

func (s *Store) write(name string, b []byte) error {
	return atomic.WriteFile(filepath.Join(s.dir, name), bytes.NewReader(b))
}

// LoadUsers reads users.json; a missing file is an empty collection.
func (s *Store) LoadUsers(_ context.Context) ([]model.User, error) {
	b, err := s.read(usersFile)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	return repository.DecodeUsers(b)
}

// SaveUsers atomically replaces users.json.
func (s *Store) SaveUsers(_ context.Context, users []model.User) error {
	b, err := repository.EncodeUsers(users)
	if err != nil {
		return err
	}
	if err := s.write(usersFile, b); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}

// Session reads the session file.
func (s *Store) Session(_ context.Context) (string, error) {
	b, err := s.read(sessionFile)
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// SetSession atomically replaces the session file.
func (s *Store) SetSession(_ context.Context, email string) error {
	if err := s.write(sessionFile, []byte(strings.TrimSpace(email))); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
