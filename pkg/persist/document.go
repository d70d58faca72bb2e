package persist

import (
	"encoding/json"
	"fmt"

	"github.com/dyluth/kanban/pkg/board"
)

// Serialization helpers for the persisted board document.
//
// The document is one JSON object:
//
//	{
//	  "columns":       { "<columnId>": [ { "id", "title", "attribute" }, ... ] },
//	  "sortAscending": { "<columnId>": true|false }
//	}
//
// Decoding is lenient per entry: a malformed card or flag is dropped on its
// own instead of failing the whole board.

// document is the wire form written by Encode.
type document struct {
	Columns       map[string][]cardRecord `json:"columns"`
	SortAscending map[string]bool         `json:"sortAscending"`
}

// cardRecord is the only card shape ever written to storage.
type cardRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Attribute string `json:"attribute"`
}

// rawDocument defers decoding of every column and flag.
type rawDocument struct {
	Columns       map[string]json.RawMessage `json:"columns"`
	SortAscending map[string]json.RawMessage `json:"sortAscending"`
}

// rawCard also accepts "color", the attribute name used by boards saved
// before attributes were generalised.
type rawCard struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Attribute string `json:"attribute"`
	Color     string `json:"color"`
}

// Encode converts a snapshot to the persisted JSON document.
// Only id, title and attribute of each card are written.
func Encode(s board.Snapshot) ([]byte, error) {
	doc := document{
		Columns:       make(map[string][]cardRecord, len(s.Columns)),
		SortAscending: make(map[string]bool, len(s.Columns)),
	}
	for id, cards := range s.Columns {
		records := make([]cardRecord, 0, len(cards))
		for _, c := range cards {
			records = append(records, cardRecord{ID: c.ID, Title: c.Title, Attribute: c.Attribute})
		}
		doc.Columns[id] = records

		asc, ok := s.SortAscending[id]
		doc.SortAscending[id] = asc || !ok
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode board document: %w", err)
	}
	return data, nil
}

// Decode parses a persisted document into a snapshot of the declared
// columns. Unknown columns are ignored, missing ones start empty, cards
// without an id or with an id already seen are dropped, and missing or
// malformed sort flags default to ascending.
//
// An error is returned only when data is not a JSON object.
func Decode(data []byte, columnIDs []string) (board.Snapshot, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return board.NewSnapshot(columnIDs), fmt.Errorf("failed to decode board document: %w", err)
	}

	s := board.NewSnapshot(columnIDs)
	seen := make(map[string]bool)

	for _, id := range columnIDs {
		s.Columns[id] = decodeCards(raw.Columns[id], seen)

		if flag, ok := raw.SortAscending[id]; ok {
			var asc bool
			if err := json.Unmarshal(flag, &asc); err == nil {
				s.SortAscending[id] = asc
			}
		}
	}

	return s, nil
}

// decodeCards decodes one column's array, skipping entries that fail.
// A column that is not an array decodes as empty.
func decodeCards(data json.RawMessage, seen map[string]bool) []board.Card {
	cards := []board.Card{}
	if len(data) == 0 {
		return cards
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return cards
	}

	for _, entry := range entries {
		var rc rawCard
		if err := json.Unmarshal(entry, &rc); err != nil {
			continue
		}
		if rc.ID == "" || seen[rc.ID] {
			continue
		}
		seen[rc.ID] = true

		attr := rc.Attribute
		if attr == "" {
			attr = rc.Color
		}
		cards = append(cards, board.Card{ID: rc.ID, Title: rc.Title, Attribute: attr})
	}
	return cards
}
