package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dyluth/kanban/pkg/board"
)

const columnWidth = 28

var (
	colorHeader = lipgloss.Color("36")
	colorDim    = lipgloss.Color("240")
	colorInk    = lipgloss.Color("235")

	styleColumn = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			Width(columnWidth)

	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	styleEmpty  = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	styleCard   = lipgloss.NewStyle().Foreground(colorInk).Padding(0, 1).Width(columnWidth - 2)
)

// CardColor converts a card attribute such as "hsl(210 70% 85%)" to a hex
// colour. Attributes that are not hues map to a light grey.
func CardColor(attribute string) lipgloss.Color {
	hue, ok := board.ParseHSL(attribute)
	if !ok {
		return lipgloss.Color("#dddddd")
	}
	return lipgloss.Color(colorful.Hsl(float64(hue), 0.70, 0.85).Hex())
}

// RenderBoard draws the columns side by side, each card on its own
// attribute colour.
func RenderBoard(columns []board.Column) string {
	boxes := make([]string, 0, len(columns))
	for _, col := range columns {
		boxes = append(boxes, renderColumn(col))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func renderColumn(col board.Column) string {
	arrow := "↑"
	if !col.SortAscending {
		arrow = "↓"
	}

	var b strings.Builder
	b.WriteString(styleHeader.Render(fmt.Sprintf("%s (%d) %s", columnName(col), len(col.Cards), arrow)))
	b.WriteString("\n")

	if len(col.Cards) == 0 {
		b.WriteString(styleEmpty.Render("empty"))
	}
	for i, c := range col.Cards {
		if i > 0 {
			b.WriteString("\n")
		}
		short := c.ID
		if len(short) > 6 {
			short = short[:6]
		}
		label := fmt.Sprintf("%s %s", short, truncate(orDash(c.Title), columnWidth-11))
		b.WriteString(styleCard.Background(CardColor(c.Attribute)).Render(label))
	}

	return styleColumn.Render(b.String())
}
