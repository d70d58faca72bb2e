package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/config"
	"github.com/dyluth/kanban/internal/kv"
	"github.com/dyluth/kanban/internal/kv/memkv"
	"github.com/dyluth/kanban/internal/logging"
	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/relay"
	"github.com/dyluth/kanban/internal/resolver"
	"github.com/dyluth/kanban/pkg/board"
	"github.com/dyluth/kanban/pkg/persist"
)

// session is one loaded board plus the resources behind it.
type session struct {
	cfg     *config.KanbanConfig
	eng     *board.Engine
	adapter *persist.Adapter
	relay   *relay.Relay
	detach  func()
}

// loadConfig reads the --config file, rendering a friendly error when it
// does not exist.
func loadConfig() (*config.KanbanConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, printer.Error(
				"no board configuration found",
				fmt.Sprintf("Could not read %s.", configPath),
				[]string{
					"Create one here:\n  kanban init",
					"Point at an existing file:\n  kanban --config path/to/board.yml <command>",
				},
			)
		}
		return nil, printer.Error("invalid board configuration", err.Error(), nil)
	}
	return cfg, nil
}

// openBoard loads the configuration, connects the storage backend and
// builds the engine. An unreachable backend is logged and replaced by an
// in-memory one for the life of the process. When events are configured
// every change is also relayed to Redis; an unreachable relay is logged
// and skipped.
func openBoard(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	openCtx, cancel := context.WithTimeout(ctx, cfg.Storage.TimeoutDuration())
	defer cancel()

	var backend persist.Backend
	backend, err = kv.Open(openCtx, cfg.Board.Name, cfg.Storage)
	if err != nil {
		logger.Warn("storage unavailable, changes will not be saved",
			"backend", cfg.Storage.Backend,
			"board", cfg.Board.Name,
			"err", fmt.Errorf("%w: %w", persist.ErrPersistenceUnavailable, err))
		backend = memkv.New()
	}

	adapter := persist.New(backend,
		persist.WithKey(cfg.Storage.Key),
		persist.WithTimeout(cfg.Storage.TimeoutDuration()),
		persist.WithLogger(logger),
	)

	eng, err := board.New(cfg.Board.Engine(), adapter,
		board.WithLogger(logger),
		board.WithIDGenerator(board.UUIDGenerator{Prefix: cfg.Board.IDPrefix}),
	)
	if err != nil {
		adapter.Close()
		return nil, printer.Error("invalid board configuration", err.Error(), nil)
	}

	s := &session{cfg: cfg, eng: eng, adapter: adapter, detach: func() {}}

	if cfg.Events != nil {
		r, err := relay.NewFromURL(cfg.Events.RedisURL, cfg.Board.Name, relay.WithLogger(logger))
		if err != nil {
			logger.Warn("change relay disabled", "err", err)
			return s, nil
		}
		pingCtx, cancelPing := context.WithTimeout(ctx, relay.DefaultTimeout)
		defer cancelPing()
		if err := r.Ping(pingCtx); err != nil {
			logger.Warn("change relay disabled", "err", err)
			r.Close()
			return s, nil
		}
		detach, err := r.Attach(eng)
		if err != nil {
			r.Close()
			return nil, err
		}
		s.relay, s.detach = r, detach
	}

	return s, nil
}

// Close releases the relay and storage backend.
func (s *session) Close() {
	s.detach()
	if s.relay != nil {
		s.relay.Close()
	}
	s.adapter.Close()
}

// resolveCard expands a card argument to a full id.
func (s *session) resolveCard(arg string) (string, error) {
	id, err := resolver.ResolveCardID(s.eng, arg)
	if err == nil {
		return id, nil
	}

	var amb *resolver.AmbiguousError
	if errors.As(err, &amb) {
		return "", printer.Error("ambiguous card id", resolver.FormatAmbiguousError(amb), nil)
	}
	if resolver.IsNotFoundError(err) {
		return "", printer.Error(
			fmt.Sprintf("card '%s' not found", arg),
			fmt.Sprintf("No card on board '%s' has an id starting with '%s'.", s.cfg.Board.Name, arg),
			[]string{"List cards and their ids:\n  kanban show"},
		)
	}
	return "", printer.Error("invalid card id", err.Error(), nil)
}

// columnError renders an unknown-column error listing the valid ids.
func (s *session) columnError(columnID string) error {
	return printer.Error(
		fmt.Sprintf("invalid column '%s'", columnID),
		fmt.Sprintf("Board '%s' has columns: %s", s.cfg.Board.Name, strings.Join(s.eng.ColumnIDs(), ", ")),
		nil,
	)
}
