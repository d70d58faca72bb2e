package board

import (
	"fmt"
	"strings"
)

// DefaultCardTitle is the title given to every card created by AddCard
// unless the engine is configured with another one.
const DefaultCardTitle = "New card"

// TopicBoard is the notifier topic that carries every change on the board.
// Every column id is also a topic, carrying only changes that touch it.
const TopicBoard = "board"

// Card is a single movable, mutable record owned by exactly one column.
type Card struct {
	ID        string `json:"id"`        // Unique across the whole board, never changes
	Title     string `json:"title"`     // Free-form text, sort key
	Attribute string `json:"attribute"` // Display colour, e.g. "hsl(212 70% 85%)"
}

// ColumnSpec declares one column at engine construction time.
// The order of specs passed to New is the left-to-right traversal order
// used by MoveCard.
type ColumnSpec struct {
	ID   string `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name" yaml:"name" toml:"name"`
}

// Column is a named, ordered collection of cards.
type Column struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Cards         []Card `json:"cards"`
	SortAscending bool   `json:"sortAscending"`
}

// Snapshot is the full board: every declared column keyed by id plus the
// per-column sort direction. It is the unit of persistence.
type Snapshot struct {
	Columns       map[string][]Card `json:"columns"`
	SortAscending map[string]bool   `json:"sortAscending"`
}

// NewSnapshot returns an empty board with every column present,
// empty and sorted ascending.
func NewSnapshot(columnIDs []string) Snapshot {
	s := Snapshot{
		Columns:       make(map[string][]Card, len(columnIDs)),
		SortAscending: make(map[string]bool, len(columnIDs)),
	}
	for _, id := range columnIDs {
		s.Columns[id] = []Card{}
		s.SortAscending[id] = true
	}
	return s
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Columns:       make(map[string][]Card, len(s.Columns)),
		SortAscending: make(map[string]bool, len(s.SortAscending)),
	}
	for id, cards := range s.Columns {
		out.Columns[id] = append([]Card{}, cards...)
	}
	for id, asc := range s.SortAscending {
		out.SortAscending[id] = asc
	}
	return out
}

// Count returns the total number of cards on the board.
func (s Snapshot) Count() int {
	n := 0
	for _, cards := range s.Columns {
		n += len(cards)
	}
	return n
}

// Direction is the relative move of a card along the column order.
type Direction string

const (
	// DirectionLeft moves a card to the previous column.
	DirectionLeft Direction = "left"

	// DirectionRight moves a card to the next column.
	DirectionRight Direction = "right"
)

// Validate checks if the Direction is a known value.
func (d Direction) Validate() error {
	switch d {
	case DirectionLeft, DirectionRight:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDirection, d)
	}
}

// offset returns the column index delta for the direction.
func (d Direction) offset() int {
	if d == DirectionLeft {
		return -1
	}
	return 1
}

// Config declares the columns and defaults of an engine.
type Config struct {
	Columns      []ColumnSpec
	DefaultTitle string // Defaults to DefaultCardTitle
	Locale       string // BCP 47 tag used for title ordering, defaults to "und"
}

// Validate checks the column declarations and fills in defaults.
func (c *Config) Validate() error {
	if len(c.Columns) == 0 {
		return fmt.Errorf("at least one column is required")
	}

	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if strings.TrimSpace(col.ID) == "" {
			return fmt.Errorf("column at index %d has an empty id", i)
		}
		if col.ID == TopicBoard {
			return fmt.Errorf("column id %q is reserved", TopicBoard)
		}
		if seen[col.ID] {
			return fmt.Errorf("duplicate column id %q", col.ID)
		}
		seen[col.ID] = true
	}

	if c.DefaultTitle == "" {
		c.DefaultTitle = DefaultCardTitle
	}
	if c.Locale == "" {
		c.Locale = "und"
	}

	return nil
}

// ColumnIDs returns the declared column ids in traversal order.
func (c *Config) ColumnIDs() []string {
	ids := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		ids[i] = col.ID
	}
	return ids
}
