package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/filenest/internal/config"
	"github.com/templui/filenest/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
	}

	cmd.AddCommand(migrateUpCmd())
	cmd.AddCommand(migrateDownCmd())
	cmd.AddCommand(migrateStatusCmd())
	return cmd
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, database *sqlx.DB, driver string) error {
				if err := db.RunMigrations(ctx, database.DB, driver); err != nil {
					return err
				}
				return printVersion(ctx, database, driver)
			})
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, database *sqlx.DB, driver string) error {
				if err := db.MigrateDown(ctx, database.DB, driver); err != nil {
					return err
				}
				return printVersion(ctx, database, driver)
			})
		},
	}
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), printVersion)
		},
	}
}

func printVersion(ctx context.Context, database *sqlx.DB, driver string) error {
	version, err := db.SchemaVersion(ctx, database.DB, driver)
	if err != nil {
		return err
	}
	fmt.Printf("schema version: %d\n", version)
	return nil
}

func withDB(ctx context.Context, fn func(ctx context.Context, database *sqlx.DB, driver string) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.Load()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	return fn(ctx, database, cfg.DBDriver)
}
