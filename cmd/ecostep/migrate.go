package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecostep/ecostep/internal/config"
	"github.com/ecostep/ecostep/internal/migrate"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Run database migrations for the configured store. PostgreSQL applies the
embedded goose migrations; SQLite auto-migrates its table on open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch a.cfg.Store.Driver {
			case config.DriverPostgres:
				v, err := migrate.Up(cmd.Context(), a.cfg.Store.DSN)
				if err != nil {
					return fmt.Errorf("failed to migrate database: %w", err)
				}
				fmt.Fprintf(a.out, "Database migrations completed successfully (version %d)\n", v)
			case config.DriverSQLite:
				if _, err := a.service(cmd.Context()); err != nil {
					return fmt.Errorf("failed to initialize database: %w", err)
				}
				fmt.Fprintln(a.out, "Database migrations completed successfully!")
			default:
				fmt.Fprintf(a.out, "Nothing to migrate for the %s store\n", a.cfg.Store.Driver)
			}
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintf(a.out, "ecostep %s (built %s)\n", version, buildDate)
			return nil
		},
	}
}
