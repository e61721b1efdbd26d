package main

import (
	"context"
	"fmt"
	"os"

	"quiz-pipeline/internal/config"
	"quiz-pipeline/internal/database"
	"quiz-pipeline/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or revert the embedded Oracle schema migrations",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newUpCmd(), newDownCmd())
	return cmd
}

func newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *database.Migrator) error {
				n, err := m.Up(ctx)
				if err != nil {
					return err
				}
				logger.Get().Info("Migrations applied", zap.Int("count", n))
				return nil
			})
		},
	}
}

func newDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			return withMigrator(cmd.Context(), func(ctx context.Context, m *database.Migrator) error {
				n, err := m.Down(ctx, steps)
				if err != nil {
					return err
				}
				logger.Get().Info("Migrations reverted", zap.Int("count", n))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	return cmd
}

func withMigrator(ctx context.Context, fn func(ctx context.Context, m *database.Migrator) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN(), database.PoolConfig{MaxOpenConns: 1})
	if err != nil {
		return err
	}
	defer func(db *sqlx.DB) { _ = db.Close() }(db)

	m, err := database.NewMigrator(db)
	if err != nil {
		return err
	}
	return fn(ctx, m)
}
