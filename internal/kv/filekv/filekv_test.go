package filekv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/pkg/persist"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("creates directory and round-trips values", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "store")
		s, err := New(dir)
		require.NoError(t, err)

		require.NoError(t, s.Set(ctx, "kanban-board-v1", []byte(`{"columns":{}}`)))
		got, err := s.Get(ctx, "kanban-board-v1")
		require.NoError(t, err)
		assert.Equal(t, `{"columns":{}}`, string(got))
		assert.FileExists(t, filepath.Join(dir, "kanban-board-v1.json"))
	})

	t.Run("missing key is ErrNotFound", func(t *testing.T) {
		s, err := New(t.TempDir())
		require.NoError(t, err)

		_, err = s.Get(ctx, "nothing")
		assert.ErrorIs(t, err, persist.ErrNotFound)
	})

	t.Run("overwrite leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		s, err := New(dir)
		require.NoError(t, err)

		require.NoError(t, s.Set(ctx, "k", []byte("one")))
		require.NoError(t, s.Set(ctx, "k", []byte("two")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "k.json", entries[0].Name())

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "two", string(got))
	})

	t.Run("keys with separators stay inside the directory", func(t *testing.T) {
		dir := t.TempDir()
		s, err := New(dir)
		require.NoError(t, err)

		assert.Equal(t, dir, filepath.Dir(s.Path("../escape/attempt")))
	})

	t.Run("rejects empty directory", func(t *testing.T) {
		_, err := New("")
		assert.Error(t, err)
	})
}

func TestStore_UpdatedAt(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.UpdatedAt(ctx, "kanban-board-v1")
	assert.ErrorIs(t, err, persist.ErrNotFound)

	require.NoError(t, s.Set(ctx, "kanban-board-v1", []byte(`{}`)))
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(s.Path("kanban-board-v1"), stamp, stamp))

	at, err := s.UpdatedAt(ctx, "kanban-board-v1")
	require.NoError(t, err)
	assert.True(t, stamp.Equal(at))
}
