// Package watch prints the live event stream of a board.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dyluth/kanban/internal/logging"
	"github.com/dyluth/kanban/internal/relay"
	"github.com/dyluth/kanban/internal/view"
	"github.com/dyluth/kanban/pkg/board"
)

// OutputFormat selects how events are written.
type OutputFormat string

const (
	// OutputFormatText writes one human-readable line per event.
	OutputFormatText OutputFormat = "text"

	// OutputFormatJSONL writes each event as a single JSON line.
	OutputFormatJSONL OutputFormat = "jsonl"
)

// Validate checks if the OutputFormat is a supported value.
func (f OutputFormat) Validate() error {
	switch f {
	case OutputFormatText, OutputFormatJSONL:
		return nil
	default:
		return fmt.Errorf("invalid output format: %q (must be 'text' or 'jsonl')", f)
	}
}

// EventSource delivers board events; *relay.Subscription implements it.
type EventSource interface {
	Events() <-chan *relay.Event
	Errors() <-chan error
}

// Options controls when Stream stops.
type Options struct {
	Format OutputFormat

	// Until stops the stream after the first event with this action.
	Until board.Action

	// Timeout stops the stream with an error when no Until event arrived in
	// time. Zero waits forever.
	Timeout time.Duration
}

// Stream writes events from src to w until ctx is cancelled, the source
// closes, or the Until event is seen. Malformed messages are logged and
// skipped.
func Stream(ctx context.Context, src EventSource, w io.Writer, opts Options) error {
	if opts.Format == "" {
		opts.Format = OutputFormatText
	}
	if err := opts.Format.Validate(); err != nil {
		return err
	}

	var timeoutCh <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	logger := logging.FromContext(ctx)
	errs := src.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timeoutCh:
			if opts.Until == "" {
				return fmt.Errorf("watch timed out after %v", opts.Timeout)
			}
			return fmt.Errorf("timeout waiting for %s event after %v", opts.Until, opts.Timeout)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("skipping board event", "err", err)

		case ev, ok := <-src.Events():
			if !ok {
				return nil
			}
			if err := write(w, ev, opts.Format); err != nil {
				return err
			}
			if opts.Until != "" && ev.Change.Action == opts.Until {
				return nil
			}
		}
	}
}

func write(w io.Writer, ev *relay.Event, format OutputFormat) error {
	if format == OutputFormatJSONL {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
		return nil
	}

	if _, err := fmt.Fprintf(w, "%-15s %s  [%s]\n", ev.Change.Action, Describe(ev.Change), formatCounts(ev.Counts)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// Describe renders a change as a short sentence.
func Describe(c board.Change) string {
	id := view.FormatID(c.CardID)

	switch c.Action {
	case board.ActionAdd:
		return fmt.Sprintf("added %s %q to %s", id, title(c), c.ColumnID)
	case board.ActionRename:
		return fmt.Sprintf("renamed %s to %q", id, title(c))
	case board.ActionMove:
		return fmt.Sprintf("moved %s %s → %s", id, c.From, c.To)
	case board.ActionRecolor:
		attr := ""
		if c.Card != nil {
			attr = c.Card.Attribute
		}
		return fmt.Sprintf("recoloured %s to %s", id, attr)
	case board.ActionRecolorColumn:
		return fmt.Sprintf("recoloured %d cards in %s", len(c.Updated), c.ColumnID)
	case board.ActionSortToggled:
		order := "ascending"
		if c.Ascending != nil && !*c.Ascending {
			order = "descending"
		}
		return fmt.Sprintf("sorted %s %s", c.ColumnID, order)
	case board.ActionRemoveStarted:
		return fmt.Sprintf("removing %s from %s", id, c.ColumnID)
	case board.ActionRemove:
		return fmt.Sprintf("removed %s from %s", id, c.ColumnID)
	default:
		return string(c.Action)
	}
}

func title(c board.Change) string {
	if c.Card == nil {
		return ""
	}
	return c.Card.Title
}

// formatCounts lists counts by column id, e.g. "doing=0 done=1 todo=2".
func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}
