package board

// Action tags a Change with the mutation that produced it.
type Action string

const (
	// ActionInit is delivered once to every new subscriber with the current state.
	ActionInit Action = "init"

	// ActionAdd reports a card created by AddCard.
	ActionAdd Action = "add"

	// ActionRename reports a title change.
	ActionRename Action = "rename"

	// ActionMove reports a card moved between adjacent columns.
	ActionMove Action = "move"

	// ActionRecolor reports a single card's attribute being regenerated.
	ActionRecolor Action = "recolor"

	// ActionRecolorColumn reports every card of a column being recoloured.
	ActionRecolorColumn Action = "recolor-column"

	// ActionSortToggled reports a column's sort direction being flipped.
	ActionSortToggled Action = "sort-toggled"

	// ActionRemoveStarted reports a card marked for removal. The board is
	// not mutated until the matching ActionRemove.
	ActionRemoveStarted Action = "remove-started"

	// ActionRemove reports a card removed from the board.
	ActionRemove Action = "remove"
)

// Change describes one mutation for presentation. Only the fields relevant
// to the Action are set. Changes are never persisted.
type Change struct {
	Action    Action       `json:"action"`
	CardID    string       `json:"card_id,omitempty"`
	ColumnID  string       `json:"column_id,omitempty"`
	From      string       `json:"from,omitempty"`
	To        string       `json:"to,omitempty"`
	Direction Direction    `json:"direction,omitempty"`
	Card      *Card        `json:"card,omitempty"`
	Updated   []Recoloured `json:"updated,omitempty"`
	Ascending *bool        `json:"ascending,omitempty"`
}

// Recoloured pairs a card id with its new attribute.
type Recoloured struct {
	ID        string `json:"id"`
	Attribute string `json:"attribute"`
}

// topics returns the notifier topics a change is published on:
// always TopicBoard, plus every column it touches.
func (c Change) topics() []string {
	topics := []string{TopicBoard}
	switch {
	case c.Action == ActionMove:
		topics = append(topics, c.From, c.To)
	case c.ColumnID != "":
		topics = append(topics, c.ColumnID)
	}
	return topics
}
