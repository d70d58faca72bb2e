// Package rediskv stores board documents as Redis strings.
//
// All keys are namespaced by board name so several boards can share one
// Redis server:
//
//	kanban:{board_name}:{key}
package rediskv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/kanban/pkg/persist"
)

// Store provides board-scoped Redis string operations.
// The store is thread-safe and can be used concurrently from multiple goroutines.
type Store struct {
	rdb       *redis.Client
	boardName string
}

// New creates a Redis store for the named board.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - boardName: namespace for every key (must not be empty)
func New(redisOpts *redis.Options, boardName string) (*Store, error) {
	if boardName == "" {
		return nil, fmt.Errorf("board name cannot be empty")
	}

	return &Store{
		rdb:       redis.NewClient(redisOpts),
		boardName: boardName,
	}, nil
}

// NewFromURL parses a redis:// URL and creates a store for the named board.
func NewFromURL(url, boardName string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return New(opts, boardName)
}

// Key returns the namespaced Redis key.
// Pattern: kanban:{board_name}:{key}
func Key(boardName, key string) string {
	return fmt.Sprintf("kanban:%s:%s", boardName, key)
}

// Ping verifies Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Get reads the value of key. Returns persist.ErrNotFound if the key doesn't exist.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, Key(s.boardName, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, persist.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return data, nil
}

// Set writes value under key with no expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, Key(s.boardName, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection. Implements io.Closer.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ensure Store implements persist.Backend.
var _ persist.Backend = (*Store)(nil)
