// Package mongokv stores board documents in a MongoDB collection, one
// document per key: {_id: <key>, value: <bytes>, updated_at: <date>}.
package mongokv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dyluth/kanban/pkg/persist"
)

// Default names used when the config leaves them empty.
const (
	DefaultDatabase   = "kanban"
	DefaultCollection = "boards"
)

// Config holds the connection settings.
type Config struct {
	URI        string `yaml:"uri" toml:"uri"`
	Database   string `yaml:"database,omitempty" toml:"database,omitempty"`
	Collection string `yaml:"collection,omitempty" toml:"collection,omitempty"`
}

// Validate checks the settings and fills in default names.
func (c *Config) Validate() error {
	if c.URI == "" {
		return errors.New("mongo uri is required")
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	return nil
}

// record is the stored document shape.
type record struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store wraps one collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New connects and verifies the server is reachable.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo at %s: %w", cfg.URI, err)
	}

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get returns the value stored under key, or persist.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var rec record
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, persist.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return rec.Value, nil
}

// Set upserts the document for key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// UpdatedAt returns when key was last written.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var rec record
	opts := options.FindOne().SetProjection(bson.M{"updated_at": 1})
	err := s.coll.FindOne(ctx, bson.M{"_id": key}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, persist.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return rec.UpdatedAt, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure Store implements persist.Backend and persist.Timestamped.
var (
	_ persist.Backend     = (*Store)(nil)
	_ persist.Timestamped = (*Store)(nil)
)
