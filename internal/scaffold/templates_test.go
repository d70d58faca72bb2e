package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/internal/config"
)

func TestTemplates(t *testing.T) {
	assert.Equal(t, []string{"basic", "personal", "scrum"}, Templates())
}

func TestLoad(t *testing.T) {
	t.Run("empty name loads the basic board", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		want := config.Default()
		require.NoError(t, want.Validate())
		assert.Equal(t, want, cfg)
	})

	t.Run("every template validates", func(t *testing.T) {
		for _, name := range Templates() {
			cfg, err := Load(name)
			require.NoError(t, err, name)
			assert.NotEmpty(t, cfg.Board.Columns, name)
			assert.Equal(t, config.BackendFile, cfg.Storage.Backend, name)
		}
	})

	t.Run("scrum columns in order", func(t *testing.T) {
		cfg, err := Load("scrum")
		require.NoError(t, err)

		var ids []string
		for _, col := range cfg.Board.Columns {
			ids = append(ids, col.ID)
		}
		assert.Equal(t, []string{"backlog", "todo", "doing", "review", "done"}, ids)
		assert.Equal(t, "New story", cfg.Board.DefaultTitle)
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := Load("waterfall")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "basic, personal, scrum")
	})
}
