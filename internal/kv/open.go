// Package kv builds the persist.Backend selected by the storage section of
// board.yml.
package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/kanban/internal/config"
	"github.com/dyluth/kanban/internal/kv/filekv"
	"github.com/dyluth/kanban/internal/kv/memkv"
	"github.com/dyluth/kanban/internal/kv/mongokv"
	"github.com/dyluth/kanban/internal/kv/rediskv"
	"github.com/dyluth/kanban/internal/kv/s3kv"
	"github.com/dyluth/kanban/internal/kv/sqlkv"
	"github.com/dyluth/kanban/pkg/persist"
)

// Open connects to the backend described by cfg. The caller owns the
// returned backend and must Close it. cfg must have been validated.
func Open(ctx context.Context, boardName string, cfg config.StorageConfig) (persist.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memkv.New(), nil

	case config.BackendFile:
		store, err := filekv.New(cfg.File.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendRedis:
		store, err := rediskv.NewFromURL(cfg.Redis.URL, boardName)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis storage unreachable: %w", err)
		}
		return store, nil

	case config.BackendSQLite, config.BackendMySQL:
		dialect, dsn := sqlkv.DialectSQLite, ""
		if cfg.Backend == config.BackendMySQL {
			dialect, dsn = sqlkv.DialectMySQL, cfg.MySQL.DSN
		} else {
			dsn = cfg.SQLite.Path
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(dsn), err)
			}
		}
		store, err := sqlkv.Open(dialect, dsn)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendS3:
		store, err := s3kv.New(ctx, *cfg.S3)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case config.BackendMongo:
		store, err := mongokv.New(ctx, *cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
