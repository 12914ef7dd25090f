package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/competitor-price-matcher/internal/config"
	"github.com/donaldgifford/competitor-price-matcher/internal/store"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: "Applies pending schema migrations to the configured store. SQLite " +
			"databases are migrated on open, so this only creates the file.",
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.Store.Postgres.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pg.Close()

		log.Info("running migrations", "host", cfg.Store.Postgres.Host, "database", cfg.Store.Postgres.Name)
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	default:
		lite, err := store.NewSQLiteStore(ctx, cfg.Store.SQLite.Path)
		if err != nil {
			return fmt.Errorf("opening sqlite: %w", err)
		}
		defer func() { _ = lite.Close() }()
		log.Info("sqlite schema applied", "path", cfg.Store.SQLite.Path)
	}

	log.Info("migrations complete")
	return nil
}
