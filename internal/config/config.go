package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dyluth/kanban/internal/kv/mongokv"
	"github.com/dyluth/kanban/internal/kv/s3kv"
	"github.com/dyluth/kanban/pkg/board"
	"github.com/dyluth/kanban/pkg/persist"
)

// Supported storage backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendS3     = "s3"
	BackendMongo  = "mongo"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "board.yml"

// DefaultAddr is the listen address of `kanban serve`.
const DefaultAddr = "127.0.0.1:8080"

// KanbanConfig represents the top-level board.yml configuration
type KanbanConfig struct {
	Version string        `yaml:"version" toml:"version"`
	Board   BoardConfig   `yaml:"board" toml:"board"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Events  *EventsConfig `yaml:"events,omitempty" toml:"events,omitempty"`
	Server  *ServerConfig `yaml:"server,omitempty" toml:"server,omitempty"`
}

// BoardConfig declares the columns and card defaults
type BoardConfig struct {
	Name         string             `yaml:"name" toml:"name"`
	DefaultTitle string             `yaml:"default_title,omitempty" toml:"default_title,omitempty"`
	Locale       string             `yaml:"locale,omitempty" toml:"locale,omitempty"`
	IDPrefix     string             `yaml:"id_prefix,omitempty" toml:"id_prefix,omitempty"`
	Columns      []board.ColumnSpec `yaml:"columns" toml:"columns"`
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	Backend string `yaml:"backend" toml:"backend"`
	Key     string `yaml:"key,omitempty" toml:"key,omitempty"`
	Timeout string `yaml:"timeout,omitempty" toml:"timeout,omitempty"` // Go duration, default 5s

	File   *FileConfig     `yaml:"file,omitempty" toml:"file,omitempty"`
	Redis  *RedisConfig    `yaml:"redis,omitempty" toml:"redis,omitempty"`
	SQLite *SQLiteConfig   `yaml:"sqlite,omitempty" toml:"sqlite,omitempty"`
	MySQL  *MySQLConfig    `yaml:"mysql,omitempty" toml:"mysql,omitempty"`
	S3     *s3kv.Config    `yaml:"s3,omitempty" toml:"s3,omitempty"`
	Mongo  *mongokv.Config `yaml:"mongo,omitempty" toml:"mongo,omitempty"`
}

// FileConfig stores the board as a JSON file in a directory
type FileConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// RedisConfig stores the board under a Redis key
type RedisConfig struct {
	URL string `yaml:"url" toml:"url"`
}

// SQLiteConfig stores the board in a SQLite database file
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// MySQLConfig stores the board in a MySQL table
type MySQLConfig struct {
	DSN string `yaml:"dsn" toml:"dsn"`
}

// EventsConfig enables the cross-process change relay
type EventsConfig struct {
	RedisURL string `yaml:"redis_url" toml:"redis_url"`
}

// ServerConfig configures `kanban serve`
type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Default returns the configuration written by `kanban init`.
func Default() *KanbanConfig {
	return &KanbanConfig{
		Version: "1.0",
		Board: BoardConfig{
			Name:         "default",
			DefaultTitle: board.DefaultCardTitle,
			Locale:       "und",
			Columns: []board.ColumnSpec{
				{ID: "todo", Name: "To do"},
				{ID: "doing", Name: "Doing"},
				{ID: "done", Name: "Done"},
			},
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Key:     persist.DefaultKey,
			Timeout: persist.DefaultTimeout.String(),
			File:    &FileConfig{Dir: ".kanban"},
		},
	}
}

// Validate performs strict validation on the configuration and applies
// defaults for optional fields.
func (c *KanbanConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if err := c.Board.Validate(); err != nil {
		return err
	}

	if err := c.Storage.Validate(); err != nil {
		return err
	}

	if c.Events != nil && c.Events.RedisURL == "" {
		return fmt.Errorf("events.redis_url is required when events is set")
	}

	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}

	return nil
}

// Validate checks the board section.
func (b *BoardConfig) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("board.name is required")
	}
	if strings.ContainsAny(b.Name, " :") {
		return fmt.Errorf("board.name %q must not contain spaces or ':'", b.Name)
	}

	// Column rules are owned by the engine
	cfg := b.Engine()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("board: %w", err)
	}
	b.DefaultTitle = cfg.DefaultTitle
	b.Locale = cfg.Locale
	return nil
}

// Engine converts the board section to the engine's Config.
func (b *BoardConfig) Engine() board.Config {
	return board.Config{
		Columns:      b.Columns,
		DefaultTitle: b.DefaultTitle,
		Locale:       b.Locale,
	}
}

// Validate checks the storage section for the selected backend.
func (s *StorageConfig) Validate() error {
	if s.Backend == "" {
		s.Backend = BackendFile
	}
	if s.Key == "" {
		s.Key = persist.DefaultKey
	}
	if s.Timeout == "" {
		s.Timeout = persist.DefaultTimeout.String()
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return fmt.Errorf("storage.timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("storage.timeout must be positive, got %s", s.Timeout)
	}

	switch s.Backend {
	case BackendMemory:
	case BackendFile:
		if s.File == nil {
			s.File = &FileConfig{}
		}
		if s.File.Dir == "" {
			s.File.Dir = ".kanban"
		}
	case BackendRedis:
		if s.Redis == nil || s.Redis.URL == "" {
			return fmt.Errorf("storage.redis.url is required for backend 'redis'")
		}
	case BackendSQLite:
		if s.SQLite == nil {
			s.SQLite = &SQLiteConfig{}
		}
		if s.SQLite.Path == "" {
			s.SQLite.Path = filepath.Join(".kanban", "board.db")
		}
	case BackendMySQL:
		if s.MySQL == nil || s.MySQL.DSN == "" {
			return fmt.Errorf("storage.mysql.dsn is required for backend 'mysql'")
		}
	case BackendS3:
		if s.S3 == nil {
			return fmt.Errorf("storage.s3 section is required for backend 's3'")
		}
		if err := s.S3.Validate(); err != nil {
			return fmt.Errorf("storage.s3: %w", err)
		}
	case BackendMongo:
		if s.Mongo == nil {
			return fmt.Errorf("storage.mongo section is required for backend 'mongo'")
		}
		if err := s.Mongo.Validate(); err != nil {
			return fmt.Errorf("storage.mongo: %w", err)
		}
	default:
		return fmt.Errorf("invalid storage.backend: %s (must be 'memory', 'file', 'redis', 'sqlite', 'mysql', 's3' or 'mongo')", s.Backend)
	}

	return nil
}

// TimeoutDuration returns the parsed storage timeout. Call after Validate.
func (s *StorageConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil || d <= 0 {
		return persist.DefaultTimeout
	}
	return d
}

// ResolvePaths makes relative file and sqlite locations relative to
// baseDir, normally the directory holding the config file.
func (c *KanbanConfig) ResolvePaths(baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	if c.Storage.File != nil {
		c.Storage.File.Dir = resolve(c.Storage.File.Dir)
	}
	if c.Storage.SQLite != nil {
		c.Storage.SQLite.Path = resolve(c.Storage.SQLite.Path)
	}
}

// isTOML reports whether path selects the TOML format.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads and validates board.yml (or board.toml) from the specified path
func Load(path string) (*KanbanConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config KanbanConfig
	if isTOML(path) {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	config.ResolvePaths(filepath.Dir(path))

	return &config, nil
}

// Write encodes cfg to path in the format selected by its extension.
// An existing file is only replaced when force is set.
func Write(path string, cfg *KanbanConfig, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", path, err)
		}
	}

	var buf bytes.Buffer
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode TOML: %w", err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
