package filter

import (
	"path/filepath"
	"strings"

	"github.com/dyluth/kanban/pkg/board"
)

// Criteria defines filtering criteria for cards.
// All filters are ANDed together - a card must match ALL criteria to pass.
type Criteria struct {
	TitleGlob string // Glob pattern for the title, case-insensitive, empty = no filter
	Attribute string // Exact match on the attribute, empty = no filter
}

// Matches returns true if the card matches all filter criteria.
// Empty criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(card board.Card) bool {
	if c.TitleGlob != "" {
		matched, err := filepath.Match(strings.ToLower(c.TitleGlob), strings.ToLower(card.Title))
		if err != nil || !matched {
			return false
		}
	}

	if c.Attribute != "" && card.Attribute != c.Attribute {
		return false
	}

	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.TitleGlob != "" || c.Attribute != ""
}

// Validate reports a malformed title pattern.
func (c *Criteria) Validate() error {
	if c.TitleGlob == "" {
		return nil
	}
	_, err := filepath.Match(c.TitleGlob, "")
	return err
}

// Apply returns copies of the columns holding only the matching cards.
// Column order and card order are preserved.
func (c *Criteria) Apply(columns []board.Column) []board.Column {
	if !c.HasFilters() {
		return columns
	}

	out := make([]board.Column, 0, len(columns))
	for _, col := range columns {
		kept := make([]board.Card, 0, len(col.Cards))
		for _, card := range col.Cards {
			if c.Matches(card) {
				kept = append(kept, card)
			}
		}
		col.Cards = kept
		out = append(out, col)
	}
	return out
}
