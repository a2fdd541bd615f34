package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"customfields/internal/infrastructure/storage/postgres"
	"customfields/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := logger.WithLogger(cmd.Context(), log)
		store, err := openStorage(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return migrateSchema(ctx, store)
	},
}

func migrateSchema(ctx context.Context, store *storage) error {
	if store.txm == nil {
		return errors.New("migrate requires the postgres storage driver")
	}
	if err := postgres.Migrate(ctx, store.txm); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
