// Package relay republishes board changes on Redis Pub/Sub so other
// processes (`kanban watch`, dashboards) can follow a board live.
//
// Delivery is at-most-once: a watcher that is not subscribed when a change
// is published never sees it, and a failed publish is logged and dropped.
// The relay only observes the engine; it never changes board state.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/dyluth/kanban/pkg/board"
)

// DefaultTimeout bounds each publish.
const DefaultTimeout = 2 * time.Second

// Event is the message published for every board change.
type Event struct {
	Board  string         `json:"board"`
	Change board.Change   `json:"change"`
	Counts map[string]int `json:"counts"`
}

// EventsChannel returns the Pub/Sub channel for a board.
// Pattern: kanban:{board_name}:board_events
func EventsChannel(boardName string) string {
	return fmt.Sprintf("kanban:%s:board_events", boardName)
}

// Subscriber is the part of the engine the relay listens to.
type Subscriber interface {
	Subscribe(topic string, handler board.Handler) (unsubscribe func(), err error)
}

// Relay publishes and receives board events for one board.
type Relay struct {
	rdb       *redis.Client
	boardName string
	timeout   time.Duration
	logger    *log.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the logger receiving publish failures.
func WithLogger(l *log.Logger) Option {
	return func(r *Relay) { r.logger = l }
}

// WithTimeout bounds each publish.
func WithTimeout(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New creates a relay for the named board.
func New(redisOpts *redis.Options, boardName string, opts ...Option) (*Relay, error) {
	if boardName == "" {
		return nil, fmt.Errorf("board name cannot be empty")
	}

	r := &Relay{
		rdb:       redis.NewClient(redisOpts),
		boardName: boardName,
		timeout:   DefaultTimeout,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewFromURL parses a redis:// URL and creates a relay for the named board.
func NewFromURL(url, boardName string, opts ...Option) (*Relay, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return New(redisOpts, boardName, opts...)
}

// Ping verifies Redis connectivity.
func (r *Relay) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection. Implements io.Closer.
func (r *Relay) Close() error {
	return r.rdb.Close()
}

// Attach subscribes to the board topic of eng and publishes every change
// after the initial delivery. Call the returned function to stop.
func (r *Relay) Attach(eng Subscriber) (detach func(), err error) {
	return eng.Subscribe(board.TopicBoard, func(p board.Payload) {
		if p.Change.Action == board.ActionInit {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.Publish(ctx, p.Change, p.Counts); err != nil {
			r.logger.Warn("failed to relay board change", "board", r.boardName,
				"action", p.Change.Action, "err", err)
		}
	})
}

// Publish sends one change to the board's events channel.
func (r *Relay) Publish(ctx context.Context, change board.Change, counts map[string]int) error {
	data, err := json.Marshal(Event{Board: r.boardName, Change: change, Counts: counts})
	if err != nil {
		return fmt.Errorf("failed to marshal board event: %w", err)
	}

	if err := r.rdb.Publish(ctx, EventsChannel(r.boardName), data).Err(); err != nil {
		return fmt.Errorf("failed to publish board event: %w", err)
	}
	return nil
}

// Subscription represents an active Pub/Sub subscription to board events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *Event
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of board events.
// The channel is closed when the subscription ends.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Errors returns the channel of subscription errors.
// Malformed messages are reported here and skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// Subscribe starts receiving the board's events. It returns once Redis has
// confirmed the subscription. Context cancellation also stops it.
//
// Events are delivered on a buffered channel (size 10).
func (r *Relay) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := r.rdb.Subscribe(ctx, EventsChannel(r.boardName))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to board events: %w", err)
	}

	eventsChan := make(chan *Event, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal board event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}
