package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/internal/config"
	"github.com/dyluth/kanban/internal/kv/filekv"
	"github.com/dyluth/kanban/internal/kv/memkv"
	"github.com/dyluth/kanban/internal/kv/rediskv"
	"github.com/dyluth/kanban/internal/kv/sqlkv"
	"github.com/dyluth/kanban/pkg/persist"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		storage config.StorageConfig
		check   func(t *testing.T, b persist.Backend)
	}{
		{
			name:    "memory",
			storage: config.StorageConfig{Backend: config.BackendMemory},
			check: func(t *testing.T, b persist.Backend) {
				assert.IsType(t, &memkv.Store{}, b)
			},
		},
		{
			name:    "file",
			storage: config.StorageConfig{Backend: config.BackendFile, File: &config.FileConfig{Dir: filepath.Join(t.TempDir(), "data")}},
			check: func(t *testing.T, b persist.Backend) {
				assert.IsType(t, &filekv.Store{}, b)
			},
		},
		{
			name:    "sqlite creates the parent directory",
			storage: config.StorageConfig{Backend: config.BackendSQLite, SQLite: &config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "board.db")}},
			check: func(t *testing.T, b persist.Backend) {
				assert.IsType(t, &sqlkv.Store{}, b)
			},
		},
		{
			name:    "redis",
			storage: config.StorageConfig{Backend: config.BackendRedis, Redis: &config.RedisConfig{URL: "redis://" + mr.Addr()}},
			check: func(t *testing.T, b persist.Backend) {
				assert.IsType(t, &rediskv.Store{}, b)
				require.NoError(t, b.Set(ctx, persist.DefaultKey, []byte("{}")))
				assert.True(t, mr.Exists(rediskv.Key("work", persist.DefaultKey)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Open(ctx, "work", tt.storage)
			require.NoError(t, err)
			defer b.Close()

			tt.check(t, b)

			_, err = b.Get(ctx, "missing")
			assert.ErrorIs(t, err, persist.ErrNotFound)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "work", config.StorageConfig{Backend: "etcd"})
	assert.ErrorContains(t, err, "unknown storage backend")

	_, err = Open(ctx, "work", config.StorageConfig{Backend: config.BackendRedis, Redis: &config.RedisConfig{URL: "not-a-url"}})
	assert.Error(t, err)
}
