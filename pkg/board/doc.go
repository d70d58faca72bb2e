// Package board is the task-board state engine: a fixed, ordered set of
// columns holding ordered cards, with the commands that move and mutate
// them.
//
// # Overview
//
// An Engine is built from a Config that declares the columns in
// left-to-right order. That order is part of the contract: MoveCard with
// DirectionLeft or DirectionRight walks it, and moving past either end is
// silently ignored.
//
// Every mutating command follows the same sequence:
//
//  1. validate (unknown column ids fail with ErrInvalidColumn)
//  2. mutate the in-memory columns
//  3. hand a snapshot to the Persister (best-effort, never fails the command)
//  4. publish a Change to subscribers
//
// Subscribers therefore never observe a change that has not already been
// handed to storage.
//
// # Ordering
//
// Cards are ordered by title with a locale-aware collator
// (golang.org/x/text/collate). Sorting is not continuous: it is re-applied
// when a card is added, when a card is moved into a column and when the
// column's direction is toggled. Renames and recolours leave the order
// alone.
//
// # Removal
//
// Removal has two phases so presentation can play a transition in between:
// BeginDelete announces ActionRemoveStarted without touching the board, and
// CommitDelete performs the removal and persists it. DeleteCard commits
// without announcing.
//
// # Usage Example
//
//	eng, err := board.New(board.Config{
//		Columns: []board.ColumnSpec{
//			{ID: "todo", Name: "To do"},
//			{ID: "doing", Name: "Doing"},
//			{ID: "done", Name: "Done"},
//		},
//	}, adapter)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	card, _ := eng.AddCard("todo")
//	_ = eng.RenameCard(card.ID, "Write the release notes")
//	_, _ = eng.MoveCard(card.ID, board.DirectionRight)
package board
