// Package persist stores a whole board as one JSON document in a key-value
// backend.
//
// The Adapter is fail-soft: a missing or unreadable document loads as an
// empty board, and write failures are logged and dropped. The in-memory
// board stays authoritative for the process.
package persist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dyluth/kanban/pkg/board"
)

// DefaultKey is the storage key of the board document.
const DefaultKey = "kanban-board-v1"

// DefaultTimeout bounds every backend call made by the Adapter.
const DefaultTimeout = 5 * time.Second

var (
	// ErrNotFound is returned by Backend.Get for a key that was never written.
	ErrNotFound = errors.New("key not found")

	// ErrPersistenceUnavailable wraps every storage failure the Adapter absorbs.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)

// Backend is a byte-oriented key-value store.
type Backend interface {
	// Get returns ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Timestamped is implemented by backends that record when a key was last
// written.
type Timestamped interface {
	// UpdatedAt returns ErrNotFound when the key does not exist.
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

// Adapter implements board.Persister on top of a Backend.
type Adapter struct {
	backend Backend
	key     string
	timeout time.Duration
	logger  *log.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithKey sets the key the document is stored under.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger that receives absorbed storage failures.
func WithLogger(l *log.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// New creates an Adapter over backend.
func New(backend Backend, opts ...Option) *Adapter {
	a := &Adapter{
		backend: backend,
		key:     DefaultKey,
		timeout: DefaultTimeout,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the storage key of the board document.
func (a *Adapter) Key() string {
	return a.key
}

// Load reads the board. It never fails: absence or any read or decode
// error yields an empty board of the declared columns.
func (a *Adapter) Load(columnIDs []string) board.Snapshot {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	data, err := a.backend.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			a.logger.Debug("no stored board, starting empty", "key", a.key)
		} else {
			a.logger.Warn("failed to read board, starting empty", "key", a.key,
				"err", fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err))
		}
		return board.NewSnapshot(columnIDs)
	}

	s, err := Decode(data, columnIDs)
	if err != nil {
		a.logger.Warn("stored board is malformed, starting empty", "key", a.key, "err", err)
		return board.NewSnapshot(columnIDs)
	}

	a.logger.Debug("board read", "key", a.key, "bytes", len(data), "cards", s.Count())
	return s
}

// Save writes the board. Failures are logged and otherwise ignored; there
// is no retry.
func (a *Adapter) Save(s board.Snapshot) {
	data, err := Encode(s)
	if err != nil {
		a.logger.Error("failed to encode board", "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.backend.Set(ctx, a.key, data); err != nil {
		a.logger.Warn("failed to write board", "key", a.key,
			"err", fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err))
		return
	}

	a.logger.Debug("board written", "key", a.key, "bytes", len(data))
}

// LastSaved reports when the board document was last written. The second
// result is false when the backend does not record write times, the
// document was never written, or the lookup failed.
func (a *Adapter) LastSaved() (time.Time, bool) {
	ts, ok := a.backend.(Timestamped)
	if !ok {
		return time.Time{}, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	at, err := ts.UpdatedAt(ctx, a.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Debug("failed to read board write time", "key", a.key, "err", err)
		}
		return time.Time{}, false
	}
	return at, true
}

// Close closes the backend. Implements io.Closer.
func (a *Adapter) Close() error {
	return a.backend.Close()
}

// Ensure Adapter implements board.Persister.
var _ board.Persister = (*Adapter)(nil)
