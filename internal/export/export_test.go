package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/kanban/pkg/board"
	"github.com/dyluth/kanban/pkg/persist"
)

type fakeSource struct {
	columns []board.Column
}

func (f fakeSource) Columns() []board.Column { return f.columns }

func (f fakeSource) Snapshot() board.Snapshot {
	ids := make([]string, len(f.columns))
	for i, c := range f.columns {
		ids[i] = c.ID
	}
	s := board.NewSnapshot(ids)
	for _, c := range f.columns {
		s.Columns[c.ID] = append([]board.Card{}, c.Cards...)
		s.SortAscending[c.ID] = c.SortAscending
	}
	return s
}

func sample() fakeSource {
	return fakeSource{columns: []board.Column{
		{ID: "todo", Name: "To do", SortAscending: true, Cards: []board.Card{
			{ID: "a1", Title: "Write, then ship", Attribute: board.FormatHSL(40)},
			{ID: "a2", Title: "Café", Attribute: "custom"},
		}},
		{ID: "done", Name: "Done", SortAscending: false, Cards: []board.Card{}},
	}}
}

func TestExport_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter(sample(), "work").Export(&buf, "JSON"))

	s, err := persist.Decode(buf.Bytes(), []string{"todo", "done"})
	require.NoError(t, err)
	assert.Equal(t, sample().Snapshot(), s)
	assert.Contains(t, buf.String(), "\n  \"columns\"")
}

func TestExport_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter(sample(), "work").Export(&buf, FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"column", "position", "id", "title", "attribute"},
		{"todo", "1", "a1", "Write, then ship", "hsl(40 70% 85%)"},
		{"todo", "2", "a2", "Café", "custom"},
	}, records)
}

func TestExport_PDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter(sample(), "Board: work").Export(&buf, FormatPDF))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExport_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := NewExporter(sample(), "work").Export(&buf, "xlsx")
	assert.ErrorContains(t, err, "unknown format xlsx")
	assert.Zero(t, buf.Len())
}

func TestHSLToRGB(t *testing.T) {
	r, g, b := hslToRGB(0)
	assert.Greater(t, r, g)
	assert.Equal(t, g, b)
}
