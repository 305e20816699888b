package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ecostep/ecostep/internal/model"
	"github.com/ecostep/ecostep/internal/repository"
)

var _ repository.Store = (*KVRepo)(nil)

// KVRepo stores the users document and session pointer as rows of kv_entries.
type KVRepo struct{ db *DB }

// NewKVRepo constructs a key-value repository.
func NewKVRepo(db *DB) *KVRepo { return &KVRepo{db: db} }

func (r *KVRepo) get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM kv_entries WHERE key=$1`
	var v string
	err := r.db.Pool.QueryRow(ctx, q, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (r *KVRepo) put(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := r.db.Pool.Exec(ctx, q, key, value)
	return err
}

// LoadUsers selects and decodes the users document.
func (r *KVRepo) LoadUsers(ctx context.Context) ([]model.User, error) {
	v, err := r.get(ctx, repository.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return repository.DecodeUsers([]byte(v))
}

// SaveUsers upserts the users document in a single statement.
func (r *KVRepo) SaveUsers(ctx context.Context, users []model.User) error {
	b, err := repository.EncodeUsers(users)
	if err != nil {
		return err
	}
	if err := r.put(ctx, repository.KeyUsers, string(b)); err != nil {
		return fmt.Errorf("upsert users: %w", err)
	}
	return nil
}

// Session selects the session pointer.
func (r *KVRepo) Session(ctx context.Context) (string, error) {
	v, err := r.get(ctx, repository.KeySession)
	if err != nil {
		return "", fmt.Errorf("select session: %w", err)
	}
	return v, nil
}

// SetSession upserts the session pointer.
func (r *KVRepo) SetSession(ctx context.Context, email string) error {
	if err := r.put(ctx, repository.KeySession, email); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}
