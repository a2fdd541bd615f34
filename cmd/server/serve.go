package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	v1 "customfields/internal/infrastructure/http/v1"
	"customfields/pkg/logger"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply the database schema before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := logger.WithLogger(cmd.Context(), log)
	log.Infow("starting customfields server", "storage", cfg.StorageDriver, "unique_scope", cfg.UniqueScope)

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if autoMigrate && store.txm != nil {
		if err := migrateSchema(ctx, store); err != nil {
			return err
		}
	}

	router := v1.NewRouter(v1.RouterConfig{
		Logger:        log,
		Repos:         store.repos,
		UniqueScope:   cfg.UniqueScope,
		MaxBatchSize:  cfg.MaxBatchSize,
		Health:        store.health,
		StorageDriver: cfg.StorageDriver,
		Version:       version,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down server...")
	if store.pool != nil {
		store.pool.LogStats(ctx)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}
