package mongokv

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestConfig_Validate(t *testing.T) {
	t.Run("fills default names", func(t *testing.T) {
		cfg := Config{URI: "mongodb://localhost:27017"}
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, DefaultDatabase, cfg.Database)
		assert.Equal(t, DefaultCollection, cfg.Collection)
	})

	t.Run("keeps explicit names", func(t *testing.T) {
		cfg := Config{URI: "mongodb://localhost:27017", Database: "work", Collection: "kv"}
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, "work", cfg.Database)
		assert.Equal(t, "kv", cfg.Collection)
	})

	t.Run("requires a uri", func(t *testing.T) {
		cfg := Config{}
		assert.ErrorContains(t, cfg.Validate(), "uri is required")
	})
}

func TestRecord_BSON(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := bson.Marshal(record{Key: "kanban-board-v1", Value: []byte(`{"columns":{}}`), UpdatedAt: at})
	assert.NoError(t, err)

	var raw bson.M
	assert.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "kanban-board-v1", raw["_id"])
	assert.Contains(t, raw, "value")
	assert.Contains(t, raw, "updated_at")
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := New(ctx, Config{URI: "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100&connectTimeoutMS=100"})
	assert.Error(t, err)
}
