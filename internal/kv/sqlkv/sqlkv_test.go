package sqlkv

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/pkg/persist"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DialectSQLite, filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Run("reopens an existing database", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "board.db")

		s1, err := Open(DialectSQLite, path)
		require.NoError(t, err)
		require.NoError(t, s1.Set(context.Background(), "k", []byte("v")))
		require.NoError(t, s1.Close())

		s2, err := Open(DialectSQLite, path)
		require.NoError(t, err)
		defer s2.Close()

		got, err := s2.Get(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, "v", string(got))
	})

	t.Run("rejects unknown dialect and empty DSN", func(t *testing.T) {
		_, err := Open(Dialect("postgres"), "x")
		assert.ErrorContains(t, err, "unknown SQL dialect")

		_, err = Open(DialectMySQL, "")
		assert.ErrorContains(t, err, "DSN cannot be empty")
	})
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert replaces the value", func(t *testing.T) {
		s := openTestStore(t)
		s.now = func() time.Time { return time.UnixMilli(1000) }
		require.NoError(t, s.Set(ctx, "doc", []byte("one")))

		s.now = func() time.Time { return time.UnixMilli(2000) }
		require.NoError(t, s.Set(ctx, "doc", []byte("two")))

		got, err := s.Get(ctx, "doc")
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))

		at, err := s.UpdatedAt(ctx, "doc")
		require.NoError(t, err)
		assert.Equal(t, int64(2000), at.UnixMilli())
	})

	t.Run("missing key is ErrNotFound", func(t *testing.T) {
		s := openTestStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, persist.ErrNotFound)

		_, err = s.UpdatedAt(ctx, "missing")
		assert.ErrorIs(t, err, persist.ErrNotFound)
	})
}

func TestDialect(t *testing.T) {
	assert.Contains(t, DialectSQLite.upsert(), "ON CONFLICT(k)")
	assert.Contains(t, DialectMySQL.upsert(), "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, DialectSQLite.schema(), "v BLOB")
	assert.Contains(t, DialectMySQL.schema(), "v LONGBLOB")
}
