package view

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/pkg/board"
)

func sampleColumns() []board.Column {
	return []board.Column{
		{ID: "todo", Name: "To do", SortAscending: true, Cards: []board.Card{
			{ID: "c1a2b3c4-0000", Title: "Write the release notes for the next version", Attribute: "hsl(10 70% 85%)"},
			{ID: "c9", Title: "Fix login", Attribute: "hsl(120 70% 85%)"},
		}},
		{ID: "doing", Name: "Doing", SortAscending: true, Cards: []board.Card{}},
		{ID: "done", Name: "Done", SortAscending: false, Cards: []board.Card{
			{ID: "d4e5f6a7-1111", Title: "  \n"},
		}},
	}
}

func TestFormatTable_Golden(t *testing.T) {
	var buf bytes.Buffer
	n := FormatTable(&buf, sampleColumns(), "work")
	assert.Equal(t, 3, n)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "table", buf.Bytes())
}

func TestFormatTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	n := FormatTable(&buf, []board.Column{{ID: "todo"}}, "work")
	assert.Equal(t, 0, n)
	assert.Equal(t, "No cards on board 'work'\n", buf.String())
}

func TestFormatTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"empty", "", "-"},
		{"short", "Fix login", "Fix login"},
		{"exactly 40 chars", strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{"41 chars - should truncate", strings.Repeat("a", 41), strings.Repeat("a", 37) + "..."},
		{"multi-line - first line only", "First\nSecond", "First"},
		{"whitespace only", "  \n  ", "-"},
		{"multi-byte runes are not split", strings.Repeat("é", 45), strings.Repeat("é", 37) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatTitle(tt.title))
		})
	}
}

func TestFormatCounts(t *testing.T) {
	var buf bytes.Buffer
	FormatCounts(&buf, sampleColumns(), map[string]int{"todo": 2, "doing": 0, "done": 1})
	assert.Equal(t, "To do  2\nDoing  0\nDone   1\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, sampleColumns()))
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	var decoded []board.Column
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleColumns(), decoded)
}

func TestCardColor(t *testing.T) {
	assert.Equal(t, "#dddddd", string(CardColor("blue")))

	red := string(CardColor(board.FormatHSL(0)))
	assert.True(t, strings.HasPrefix(red, "#"))
	assert.Len(t, red, 7)
	assert.NotEqual(t, red, string(CardColor(board.FormatHSL(180))))
}

func TestRenderBoard(t *testing.T) {
	out := RenderBoard(sampleColumns())

	assert.Contains(t, out, "To do (2) ↑")
	assert.Contains(t, out, "Doing (0) ↑")
	assert.Contains(t, out, "Done (1) ↓")
	assert.Contains(t, out, "c1a2b3")
	assert.Contains(t, out, "Fix login")
	assert.Contains(t, out, "empty")
}
