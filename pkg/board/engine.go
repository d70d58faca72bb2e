package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dyluth/kanban/pkg/notify"
)

// Persister loads and stores the whole board.
// Implementations absorb their own failures: Load falls back to an empty
// board and Save is best-effort.
type Persister interface {
	Load(columnIDs []string) Snapshot
	Save(s Snapshot)
}

// Payload is a single notifier delivery: the columns of the topic, the
// change and the per-column card counts.
type Payload = notify.Payload[[]Column, Change]

// Handler receives board notifications.
type Handler = notify.Handler[[]Column, Change]

// MoveResult describes the outcome of MoveCard. Moved is false when the
// card was unknown or already at the edge of the board.
type MoveResult struct {
	Moved     bool      `json:"moved"`
	CardID    string    `json:"card_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Direction Direction `json:"direction"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug traces of every command.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithIDGenerator replaces the default UUID card id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithColorGenerator replaces the default random HSL colour generator.
func WithColorGenerator(g ColorGenerator) Option {
	return func(e *Engine) { e.colors = g }
}

// Engine owns the columns of one board and is the only way to mutate them.
//
// Every mutating command runs to completion synchronously: it changes the
// in-memory board, hands the sanitized snapshot to the Persister and then
// notifies subscribers. An Engine is not safe for concurrent use; callers
// that share one across goroutines must serialise commands themselves.
type Engine struct {
	specs     []ColumnSpec
	index     map[string]int
	cards     map[string][]Card
	ascending map[string]bool
	pending   map[string]bool

	defaultTitle string
	sorter       *titleSorter
	ids          IDGenerator
	colors       ColorGenerator
	store        Persister
	notifier     *notify.Notifier[[]Column, Change]
	logger       *log.Logger
}

// New builds an engine for the declared columns and loads its state from p.
// A nil p keeps the board in memory only.
func New(cfg Config, p Persister, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board config: %w", err)
	}

	sorter, err := newTitleSorter(cfg.Locale)
	if err != nil {
		return nil, err
	}

	if p == nil {
		p = MemoryPersister{}
	}

	e := &Engine{
		specs:        append([]ColumnSpec(nil), cfg.Columns...),
		index:        make(map[string]int, len(cfg.Columns)),
		pending:      make(map[string]bool),
		defaultTitle: cfg.DefaultTitle,
		sorter:       sorter,
		ids:          UUIDGenerator{},
		colors:       NewHSLGenerator(nil),
		store:        p,
		logger:       log.New(io.Discard),
	}
	for i, spec := range e.specs {
		e.index[spec.ID] = i
	}
	for _, opt := range opts {
		opt(e)
	}

	e.restore(p.Load(cfg.ColumnIDs()))
	e.notifier = notify.New[[]Column, Change](e, Change{Action: ActionInit})

	e.logger.Debug("board loaded", "columns", len(e.specs), "cards", e.total())
	return e, nil
}

// restore adopts a loaded snapshot, keeping only declared columns. Cards
// without an id, and any card whose id was already seen in an earlier
// column or position, are dropped.
func (e *Engine) restore(s Snapshot) {
	e.cards = make(map[string][]Card, len(e.specs))
	e.ascending = make(map[string]bool, len(e.specs))
	seen := make(map[string]bool)
	for _, spec := range e.specs {
		cards := s.Columns[spec.ID]
		kept := make([]Card, 0, len(cards))
		for _, c := range cards {
			if c.ID == "" || seen[c.ID] {
				e.logger.Warn("dropping loaded card", "card", c.ID, "column", spec.ID, "reason", dropReason(c.ID))
				continue
			}
			seen[c.ID] = true
			kept = append(kept, c)
		}
		e.cards[spec.ID] = kept

		asc, ok := s.SortAscending[spec.ID]
		e.ascending[spec.ID] = asc || !ok
	}
}

func dropReason(id string) string {
	if id == "" {
		return "missing id"
	}
	return "duplicate id"
}

// AddCard creates a card with the default title and a fresh colour at the
// end of the column, then re-applies that column's sort order.
func (e *Engine) AddCard(columnID string) (Card, error) {
	if err := e.checkColumn(columnID); err != nil {
		return Card{}, err
	}

	card := Card{
		ID:        e.ids.NewID(),
		Title:     e.defaultTitle,
		Attribute: e.colors.NewColor(),
	}
	e.cards[columnID] = append(e.cards[columnID], card)
	e.applySort(columnID)

	e.logger.Debug("card added", "card", card.ID, "column", columnID)
	e.commit(Change{Action: ActionAdd, CardID: card.ID, ColumnID: columnID, Card: &card})
	return card, nil
}

// RenameCard replaces a card's title with the trimmed new title. Invalid
// UTF-8 sequences are replaced with U+FFFD so the stored title matches
// what the board document can hold. The column is not re-sorted.
func (e *Engine) RenameCard(cardID, title string) error {
	columnID, idx, ok := e.find(cardID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}

	e.cards[columnID][idx].Title = strings.ToValidUTF8(strings.TrimSpace(title), "\uFFFD")
	card := e.cards[columnID][idx]

	e.logger.Debug("card renamed", "card", cardID, "column", columnID)
	e.commit(Change{Action: ActionRename, CardID: cardID, ColumnID: columnID, Card: &card})
	return nil
}

// MoveCard moves a card one column left or right along the declared
// column order. Moving past either end, or moving an unknown card, leaves
// the board untouched and emits nothing.
func (e *Engine) MoveCard(cardID string, dir Direction) (MoveResult, error) {
	if err := dir.Validate(); err != nil {
		return MoveResult{}, err
	}

	result := MoveResult{CardID: cardID, Direction: dir}
	from, idx, ok := e.find(cardID)
	if !ok {
		return result, nil
	}
	result.From = from

	target := e.index[from] + dir.offset()
	if target < 0 || target >= len(e.specs) {
		e.logger.Debug("move ignored at board edge", "card", cardID, "column", from, "direction", dir)
		return result, nil
	}
	to := e.specs[target].ID

	card := e.cards[from][idx]
	e.cards[from] = append(e.cards[from][:idx:idx], e.cards[from][idx+1:]...)
	e.cards[to] = append(e.cards[to], card)
	e.applySort(to)

	result.To = to
	result.Moved = true

	e.logger.Debug("card moved", "card", cardID, "from", from, "to", to)
	e.commit(Change{Action: ActionMove, CardID: cardID, From: from, To: to, Direction: dir, Card: &card})
	return result, nil
}

// BeginDelete marks a card for removal and announces it without touching
// the board or storage. It reports whether the card exists.
func (e *Engine) BeginDelete(cardID string) bool {
	columnID, idx, ok := e.find(cardID)
	if !ok {
		return false
	}

	e.pending[cardID] = true
	card := e.cards[columnID][idx]

	e.logger.Debug("card removal started", "card", cardID, "column", columnID)
	e.publish(Change{Action: ActionRemoveStarted, CardID: cardID, ColumnID: columnID, Card: &card})
	return true
}

// CommitDelete removes a card from its column. Unknown cards are ignored
// and storage is not written. It reports whether a card was removed.
func (e *Engine) CommitDelete(cardID string) bool {
	columnID, idx, ok := e.find(cardID)
	if !ok {
		delete(e.pending, cardID)
		return false
	}

	card := e.cards[columnID][idx]
	e.cards[columnID] = append(e.cards[columnID][:idx:idx], e.cards[columnID][idx+1:]...)
	delete(e.pending, cardID)

	e.logger.Debug("card removed", "card", cardID, "column", columnID)
	e.commit(Change{Action: ActionRemove, CardID: cardID, ColumnID: columnID, Card: &card})
	return true
}

// DeleteCard removes a card in one step, for callers with no transition
// to play between marking and removal.
func (e *Engine) DeleteCard(cardID string) bool {
	return e.CommitDelete(cardID)
}

// IsPendingDelete reports whether BeginDelete marked the card and the
// removal has not been committed yet.
func (e *Engine) IsPendingDelete(cardID string) bool {
	return e.pending[cardID]
}

// RecolorCard gives one card a new attribute. It reports whether the card exists.
func (e *Engine) RecolorCard(cardID string) bool {
	columnID, idx, ok := e.find(cardID)
	if !ok {
		return false
	}

	e.cards[columnID][idx].Attribute = e.colors.NewColor()
	card := e.cards[columnID][idx]

	e.logger.Debug("card recoloured", "card", cardID, "attribute", card.Attribute)
	e.commit(Change{Action: ActionRecolor, CardID: cardID, ColumnID: columnID, Card: &card})
	return true
}

// RecolorColumn gives every card of a column a new attribute.
// Titles are unchanged so the column is not re-sorted.
func (e *Engine) RecolorColumn(columnID string) error {
	if err := e.checkColumn(columnID); err != nil {
		return err
	}

	cards := e.cards[columnID]
	updated := make([]Recoloured, 0, len(cards))
	for i := range cards {
		cards[i].Attribute = e.colors.NewColor()
		updated = append(updated, Recoloured{ID: cards[i].ID, Attribute: cards[i].Attribute})
	}

	e.logger.Debug("column recoloured", "column", columnID, "cards", len(updated))
	e.commit(Change{Action: ActionRecolorColumn, ColumnID: columnID, Updated: updated})
	return nil
}

// ToggleSort flips a column's sort direction and re-sorts it.
func (e *Engine) ToggleSort(columnID string) error {
	if err := e.checkColumn(columnID); err != nil {
		return err
	}

	asc := !e.ascending[columnID]
	e.ascending[columnID] = asc
	e.applySort(columnID)

	e.logger.Debug("sort toggled", "column", columnID, "ascending", asc)
	e.commit(Change{Action: ActionSortToggled, ColumnID: columnID, Ascending: &asc})
	return nil
}

// Counts returns the number of cards in every column.
func (e *Engine) Counts() map[string]int {
	counts := make(map[string]int, len(e.specs))
	for _, spec := range e.specs {
		counts[spec.ID] = len(e.cards[spec.ID])
	}
	return counts
}

// Subscribe registers handler for a topic: TopicBoard for every change, or
// a column id for changes touching that column. The handler is invoked
// once immediately with an ActionInit change.
func (e *Engine) Subscribe(topic string, handler Handler) (unsubscribe func(), err error) {
	if topic != TopicBoard {
		if err := e.checkColumn(topic); err != nil {
			return nil, err
		}
	}
	unsub := e.notifier.Subscribe(topic, handler)
	e.logger.Debug("subscribed", "topic", topic, "subscribers", e.notifier.Len(topic))
	return func() {
		unsub()
		e.logger.Debug("unsubscribed", "topic", topic, "subscribers", e.notifier.Len(topic))
	}, nil
}

// State returns the columns a topic covers: all of them for TopicBoard,
// one for a column id, none for anything else.
func (e *Engine) State(topic string) []Column {
	if topic == TopicBoard {
		cols := make([]Column, 0, len(e.specs))
		for _, spec := range e.specs {
			cols = append(cols, e.column(spec))
		}
		return cols
	}
	if i, ok := e.index[topic]; ok {
		return []Column{e.column(e.specs[i])}
	}
	return nil
}

// Columns returns a copy of every column in traversal order.
func (e *Engine) Columns() []Column {
	return e.State(TopicBoard)
}

// Column returns a copy of one column.
func (e *Engine) Column(columnID string) (Column, error) {
	if err := e.checkColumn(columnID); err != nil {
		return Column{}, err
	}
	return e.column(e.specs[e.index[columnID]]), nil
}

// Card returns a card and the id of the column holding it.
func (e *Engine) Card(cardID string) (Card, string, bool) {
	columnID, idx, ok := e.find(cardID)
	if !ok {
		return Card{}, "", false
	}
	return e.cards[columnID][idx], columnID, true
}

// ColumnIDs returns the declared column ids in traversal order.
func (e *Engine) ColumnIDs() []string {
	ids := make([]string, len(e.specs))
	for i, spec := range e.specs {
		ids[i] = spec.ID
	}
	return ids
}

// Snapshot returns a deep copy of the persistable board.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Columns:       make(map[string][]Card, len(e.specs)),
		SortAscending: make(map[string]bool, len(e.specs)),
	}
	for _, spec := range e.specs {
		s.Columns[spec.ID] = append([]Card{}, e.cards[spec.ID]...)
		s.SortAscending[spec.ID] = e.ascending[spec.ID]
	}
	return s
}

func (e *Engine) column(spec ColumnSpec) Column {
	return Column{
		ID:            spec.ID,
		Name:          spec.Name,
		Cards:         append([]Card{}, e.cards[spec.ID]...),
		SortAscending: e.ascending[spec.ID],
	}
}

func (e *Engine) checkColumn(columnID string) error {
	if _, ok := e.index[columnID]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidColumn, columnID)
	}
	return nil
}

// find scans the columns in traversal order for a card.
func (e *Engine) find(cardID string) (columnID string, idx int, ok bool) {
	for _, spec := range e.specs {
		for i, c := range e.cards[spec.ID] {
			if c.ID == cardID {
				return spec.ID, i, true
			}
		}
	}
	return "", -1, false
}

func (e *Engine) applySort(columnID string) {
	e.sorter.sort(e.cards[columnID], e.ascending[columnID])
}

func (e *Engine) total() int {
	n := 0
	for _, cards := range e.cards {
		n += len(cards)
	}
	return n
}

// commit persists the board and then notifies subscribers.
func (e *Engine) commit(c Change) {
	e.store.Save(e.Snapshot())
	e.publish(c)
}

func (e *Engine) publish(c Change) {
	for _, topic := range c.topics() {
		e.notifier.Publish(topic, c)
	}
}

// MemoryPersister keeps nothing: every Load starts empty.
type MemoryPersister struct{}

// Load returns an empty board.
func (MemoryPersister) Load(columnIDs []string) Snapshot { return NewSnapshot(columnIDs) }

// Save discards the snapshot.
func (MemoryPersister) Save(Snapshot) {}
