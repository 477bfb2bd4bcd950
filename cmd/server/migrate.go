package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"styleme/internal/config"
	"styleme/internal/logging"
	"styleme/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := repository.MigrateDSN(cfg.GetPostgreSQLDSN(), logger); err != nil {
		return err
	}
	logger.Info("Migrations complete", zap.String("database", cfg.PostgreSQL.Database))
	return nil
}
