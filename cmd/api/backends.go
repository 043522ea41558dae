package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/pkordes/snaptrip/backend/internal/config"
	"github.com/pkordes/snaptrip/backend/internal/remote"
	remotefs "github.com/pkordes/snaptrip/backend/internal/remote/firestore"
	remotemem "github.com/pkordes/snaptrip/backend/internal/remote/memory"
	"github.com/pkordes/snaptrip/backend/internal/repo"
	repomem "github.com/pkordes/snaptrip/backend/internal/repo/memory"
	"github.com/pkordes/snaptrip/backend/migrations"
)

// openCache builds the local cache selected by cfg.CacheBackend. The
// Postgres cache is migrated before use.
func openCache(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.LocalCache, func(), error) {
	if cfg.CacheBackend == config.BackendMemory {
		log.Warn("using in-memory cache; cached trips are lost on restart")
		return repomem.NewCache(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	// goose drives database/sql; borrow the pool through the pgx stdlib
	// adapter for the duration of the migration.
	sqlDB := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(ctx, sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("database connection established", "migrations_applied", applied)

	return repo.NewLocalCache(pool), pool.Close, nil
}

// openRemote builds the document and image stores selected by
// cfg.RemoteBackend.
func openRemote(ctx context.Context, cfg config.Config, log *slog.Logger) (remote.Store, remote.ImageStore, func(), error) {
	if cfg.RemoteBackend == config.BackendMemory {
		log.Warn("using in-memory remote store")
		s := remotemem.NewStore()
		return s, s, func() {}, nil
	}

	s, err := remotefs.NewStore(ctx, cfg.GCPProject, cfg.StorageBucket)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("firestore client ready", "project", cfg.GCPProject, "bucket", cfg.StorageBucket)
	return s, s, func() {
		if err := s.Close(); err != nil {
			log.Warn("closing firestore client", "error", err)
		}
	}, nil
}
