// Package view renders board state for terminals and scripts: a plain
// table, JSON, per-column counts and a styled side-by-side board.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/kanban/pkg/board"
)

// FormatTable writes every card as a row of a formatted table.
// The table includes columns: ID (truncated), COLUMN, TITLE (truncated) and ATTRIBUTE.
// Returns the number of cards formatted.
func FormatTable(w io.Writer, columns []board.Column, boardName string) int {
	total := 0
	for _, col := range columns {
		total += len(col.Cards)
	}

	if total == 0 {
		fmt.Fprintf(w, "No cards on board '%s'\n", boardName)
		return 0
	}

	fmt.Fprintf(w, "Cards on board '%s':\n\n", boardName)

	fmt.Fprintf(w, "%-8s %-10s %-40s %s\n",
		"ID", "COLUMN", "TITLE", "ATTRIBUTE")
	fmt.Fprintf(w, "%-8s %-10s %-40s %s\n",
		"--------", "----------", "----------------------------------------", "----------------")

	for _, col := range columns {
		for _, c := range col.Cards {
			fmt.Fprintf(w, "%-8s %-10s %-40s %s\n",
				FormatID(c.ID),
				truncate(columnName(col), 10),
				formatTitle(c.Title),
				orDash(c.Attribute),
			)
		}
	}

	countMsg := "card"
	if total != 1 {
		countMsg = "cards"
	}
	fmt.Fprintf(w, "\n%d %s\n", total, countMsg)

	return total
}

// FormatCounts writes one "name  count" line per column, in column order.
func FormatCounts(w io.Writer, columns []board.Column, counts map[string]int) {
	width := 0
	for _, col := range columns {
		width = max(width, len([]rune(columnName(col))))
	}
	for _, col := range columns {
		fmt.Fprintf(w, "%-*s  %d\n", width, columnName(col), counts[col.ID])
	}
}

// FormatJSON writes the columns as pretty-printed JSON.
func FormatJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal board to JSON: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	fmt.Fprintln(w)
	return nil
}

// FormatID truncates a card id to its first 8 characters for compact display.
func FormatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatTitle shows only the first non-empty line, at most 40 characters.
// Empty titles return "-".
func formatTitle(title string) string {
	for _, line := range strings.Split(title, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return truncate(trimmed, 40)
		}
	}
	return "-"
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// columnName is the display name, falling back to the id.
func columnName(col board.Column) string {
	if col.Name != "" {
		return col.Name
	}
	return col.ID
}
