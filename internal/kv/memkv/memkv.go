// Package memkv is an in-process key-value backend. Nothing survives the
// process; it backs throwaway boards and tests.
package memkv

import (
	"context"
	"sync"

	"github.com/dyluth/kanban/pkg/persist"
)

// Store is a map guarded by a mutex. Read and write failures can be
// injected to simulate unavailable storage.
type Store struct {
	mu       sync.RWMutex
	data     map[string][]byte
	readErr  error
	writeErr error
	writes   int
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value or persist.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.readErr != nil {
		return nil, s.readErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, persist.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	s.data[key] = append([]byte(nil), value...)
	s.writes++
	return nil
}

// Close does nothing.
func (s *Store) Close() error {
	return nil
}

// FailReads makes every Get return err until called again with nil.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// FailWrites makes every Set return err until called again with nil.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes returns the number of successful Set calls.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Ensure Store implements persist.Backend.
var _ persist.Backend = (*Store)(nil)
