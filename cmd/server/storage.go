package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"customfields/internal/config"
	v1 "customfields/internal/infrastructure/http/v1"
	"customfields/internal/infrastructure/http/v1/handlers"
	"customfields/internal/infrastructure/storage/memory"
	"customfields/internal/infrastructure/storage/postgres"
	"customfields/internal/infrastructure/storage/postgres/customfield_repo"
)

// storage is an opened backing store.
type storage struct {
	repos  v1.Repositories
	health handlers.Pinger
	pool   *postgres.Pool
	txm    *postgres.TxManager
}

func (s *storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*storage, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.ConnLifetime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	txm := postgres.NewTxManager(pool).WithStatementTimeout(cfg.StatementTimeout)
	if cfg.Serializable {
		txm = txm.WithIsolation(pgx.Serializable)
	}

	return &storage{
		repos: v1.Repositories{
			Fields:    customfield_repo.NewFieldRepo(txm),
			Options:   customfield_repo.NewOptionRepo(txm),
			Values:    customfield_repo.NewValueRepo(txm),
			TxManager: txm,
		},
		health: pool,
		pool:   pool,
		txm:    txm,
	}, nil
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		store := memory.New()
		return &storage{repos: v1.Repositories{
			Fields:    store.Fields(),
			Options:   store.Options(),
			Values:    store.Values(),
			TxManager: store,
		}}, nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
