package resolver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/pkg/board"
)

type fakeSource struct {
	snap board.Snapshot
}

func (f fakeSource) Snapshot() board.Snapshot { return f.snap }

func newSource(ids map[string][]string) fakeSource {
	s := board.NewSnapshot([]string{"todo", "doing", "done"})
	for col, list := range ids {
		for _, id := range list {
			s.Columns[col] = append(s.Columns[col], board.Card{ID: id, Title: id})
		}
	}
	return fakeSource{snap: s}
}

func TestResolveCardID(t *testing.T) {
	src := newSource(map[string][]string{
		"todo":  {"3f2a9c11-aaaa-4bbb-8ccc-000000000001", "77aa0011-aaaa-4bbb-8ccc-000000000002"},
		"doing": {"3f2a9c22-aaaa-4bbb-8ccc-000000000003"},
		"done":  {"abc"},
	})

	t.Run("full id", func(t *testing.T) {
		id, err := ResolveCardID(src, "77aa0011-aaaa-4bbb-8ccc-000000000002")
		require.NoError(t, err)
		assert.Equal(t, "77aa0011-aaaa-4bbb-8ccc-000000000002", id)
	})

	t.Run("short full id is accepted", func(t *testing.T) {
		id, err := ResolveCardID(src, "abc")
		require.NoError(t, err)
		assert.Equal(t, "abc", id)
	})

	t.Run("unique prefix", func(t *testing.T) {
		id, err := ResolveCardID(src, "77aa00")
		require.NoError(t, err)
		assert.Equal(t, "77aa0011-aaaa-4bbb-8ccc-000000000002", id)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ResolveCardID(src, "77aa")
		assert.ErrorContains(t, err, "at least 6 characters (got 4)")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := ResolveCardID(src, "ffffff")
		assert.True(t, IsNotFoundError(err))
		assert.False(t, IsAmbiguousError(err))
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := ResolveCardID(src, "3f2a9c")
		require.True(t, IsAmbiguousError(err))
		amb := err.(*AmbiguousError)
		assert.Equal(t, []string{
			"3f2a9c11-aaaa-4bbb-8ccc-000000000001",
			"3f2a9c22-aaaa-4bbb-8ccc-000000000003",
		}, amb.Matches)
	})
}

func TestFormatAmbiguousError(t *testing.T) {
	matches := make([]string, 12)
	for i := range matches {
		matches[i] = fmt.Sprintf("card-%02d", i)
	}

	msg := FormatAmbiguousError(&AmbiguousError{ShortID: "card-0", Matches: matches})
	assert.True(t, strings.HasPrefix(msg, "Error: ambiguous short ID 'card-0' matches 12 cards:\n"))
	assert.Contains(t, msg, "  card-09\n")
	assert.NotContains(t, msg, "card-10")
	assert.Contains(t, msg, "...and 2 more")
	assert.True(t, strings.HasSuffix(msg, "uniquely identify the card."))
}
