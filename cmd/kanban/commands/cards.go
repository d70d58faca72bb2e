package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/view"
	"github.com/dyluth/kanban/pkg/board"
)

var recolorColumn bool

var addCmd = &cobra.Command{
	Use:   "add <column>",
	Short: "Add a card to a column",
	Long: `Add a card with the default title and a fresh colour to a column.
The column's sort order is re-applied, so the card may not end up last.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var renameCmd = &cobra.Command{
	Use:   "rename <card> <title>",
	Short: "Change a card's title",
	Long: `Change a card's title. Leading and trailing whitespace is trimmed.
The column is not re-sorted.

Cards can be named by a unique id prefix of at least 6 characters.`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

var moveCmd = &cobra.Command{
	Use:   "move <card> left|right",
	Short: "Move a card to the neighbouring column",
	Long: `Move a card one column to the left or right. Moving past the first or
last column does nothing.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(board.DirectionLeft), string(board.DirectionRight)},
	RunE:      runMove,
}

var rmCmd = &cobra.Command{
	Use:     "rm <card>",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove a card",
	Long: `Remove a card from the board. Watchers see the removal start before
it is committed.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

var recolorCmd = &cobra.Command{
	Use:   "recolor <card> | recolor --column <column>",
	Short: "Give a card, or every card of a column, a new colour",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecolor,
}

func init() {
	recolorCmd.Flags().BoolVar(&recolorColumn, "column", false, "Treat the argument as a column and recolour all its cards")

	rootCmd.AddCommand(addCmd, renameCmd, moveCmd, rmCmd, recolorCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	card, err := s.eng.AddCard(args[0])
	if err != nil {
		if board.IsInvalidColumn(err) {
			return s.columnError(args[0])
		}
		return err
	}

	printer.Success("Added card %s to %s\n", card.ID, args[0])
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.resolveCard(args[0])
	if err != nil {
		return err
	}

	if err := s.eng.RenameCard(id, args[1]); err != nil {
		return err
	}

	card, _, _ := s.eng.Card(id)
	printer.Success("Renamed %s to %q\n", view.FormatID(id), card.Title)
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	dir := board.Direction(args[1])
	if err := dir.Validate(); err != nil {
		return printer.Error(
			fmt.Sprintf("invalid direction '%s'", args[1]),
			"Cards move one column at a time.",
			[]string{"Use 'left' or 'right'."},
		)
	}

	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.resolveCard(args[0])
	if err != nil {
		return err
	}

	result, err := s.eng.MoveCard(id, dir)
	if err != nil {
		return err
	}

	if !result.Moved {
		printer.Warning("%s is already in the %s column; nothing to do\n", view.FormatID(id), edgeName(dir))
		return nil
	}

	printer.Success("Moved %s from %s to %s\n", view.FormatID(id), result.From, result.To)
	return nil
}

func edgeName(dir board.Direction) string {
	if dir == board.DirectionLeft {
		return "first"
	}
	return "last"
}

func runRm(cmd *cobra.Command, args []string) error {
	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.resolveCard(args[0])
	if err != nil {
		return err
	}

	s.eng.BeginDelete(id)
	s.eng.CommitDelete(id)

	printer.Success("Removed card %s\n", view.FormatID(id))
	return nil
}

func runRecolor(cmd *cobra.Command, args []string) error {
	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if recolorColumn {
		if err := s.eng.RecolorColumn(args[0]); err != nil {
			if board.IsInvalidColumn(err) {
				return s.columnError(args[0])
			}
			return err
		}
		printer.Success("Recoloured %d cards in %s\n", s.eng.Counts()[args[0]], args[0])
		return nil
	}

	id, err := s.resolveCard(args[0])
	if err != nil {
		return err
	}

	s.eng.RecolorCard(id)
	card, _, _ := s.eng.Card(id)
	printer.Success("Recoloured %s to %s\n", view.FormatID(id), card.Attribute)
	return nil
}
