package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/ecostep/ecostep/internal/model"
	"github.com/ecostep/ecostep/internal/repository"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

const (
	selectQ = `SELECT value FROM kv_entries WHERE key=\$1`
	upsertQ = `INSERT INTO kv_entries \(key, value, updated_at\) VALUES \(\$1, \$2, now\(\)\) ON CONFLICT \(key\) DO UPDATE SET value = EXCLUDED.value, updated_at = now\(\)`
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestKVRepo_LoadUsers(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewKVRepo(db)
	ctx := context.Background()

	users := []model.User{{ID: "1", Email: "a@example.com", Badges: []string{"low-footprint"}}}
	doc, err := repository.EncodeUsers(users)
	require.NoError(t, err)

	mock.ExpectQuery(selectQ).
		WithArgs(repository.KeyUsers).
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(string(doc)))
	got, err := r.LoadUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, users, got)

	// Missing row is an empty collection.
	mock.ExpectQuery(selectQ).
		WithArgs(repository.KeyUsers).
		WillReturnError(pgx.ErrNoRows)
	got, err = r.LoadUsers(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	mock.ExpectQuery(selectQ).
		WithArgs(repository.KeyUsers).
		WillReturnError(errors.New("conn reset"))
	_, err = r.LoadUsers(ctx)
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepo_SaveUsers(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewKVRepo(db)
	ctx := context.Background()

	users := []model.User{{ID: "1", Email: "a@example.com"}}
	doc, err := repository.EncodeUsers(users)
	require.NoError(t, err)

	mock.ExpectExec(upsertQ).
		WithArgs(repository.KeyUsers, string(doc)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.SaveUsers(ctx, users))

	mock.ExpectExec(upsertQ).
		WithArgs(repository.KeyUsers, string(doc)).
		WillReturnError(errors.New("boom"))
	require.Error(t, r.SaveUsers(ctx, users))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKVRepo_Session(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewKVRepo(db)
	ctx := context.Background()

	mock.ExpectExec(upsertQ).
		WithArgs(repository.KeySession, "a@example.com").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.SetSession(ctx, "a@example.com"))

	mock.ExpectQuery(selectQ).
		WithArgs(repository.KeySession).
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow("a@example.com"))
	email, err := r.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", email)

	mock.ExpectQuery(selectQ).
		WithArgs(repository.KeySession).
		WillReturnError(pgx.ErrNoRows)
	email, err = r.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, "", email)

	require.NoError(t, mock.ExpectationsWereMet())
}
