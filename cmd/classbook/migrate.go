package main

import (
	"fmt"

	"github.com/DanielPopoola/classbook/db"
	"github.com/DanielPopoola/classbook/internal/config"
	"github.com/DanielPopoola/classbook/internal/infrastructure/persistence/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger := cfg.Logger.NewLogger()

			database, err := postgres.Connect(cmd.Context(), &cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer database.Close()

			applied, err := postgres.Migrate(cmd.Context(), database, db.Migrations, "migrations")
			if err != nil {
				return err
			}

			logger.Info("migrations complete", "applied", len(applied))
			return nil
		},
	}
}
