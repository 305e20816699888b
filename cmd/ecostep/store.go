package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ecostep/ecostep/internal/config"
	"github.com/ecostep/ecostep/internal/migrate"
	"github.com/ecostep/ecostep/internal/repository"
	"github.com/ecostep/ecostep/internal/repository/file"
	"github.com/ecostep/ecostep/internal/repository/memory"
	"github.com/ecostep/ecostep/internal/repository/postgres"
	"github.com/ecostep/ecostep/internal/repository/sqlite"
)

func noopClose() error { return nil }

// openStore builds the backend selected by cfg.Store.Driver. The returned
// closer releases connections and is never nil.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, func() error, error) {
	sc := cfg.Store
	log.Debug("opening store", zap.String("driver", sc.Driver), zap.String("path", sc.Path))

	switch sc.Driver {
	case config.DriverMemory:
		return memory.New(), noopClose, nil

	case config.DriverFile:
		st, err := file.New(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, noopClose, nil

	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(sc.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		c, err := sqlite.New(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil

	case config.DriverPostgres:
		v, err := migrate.Up(ctx, sc.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("postgres schema ready", zap.Int64("version", v))
		db, err := postgres.New(ctx, sc.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return postgres.NewKVRepo(db), func() error { db.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}
