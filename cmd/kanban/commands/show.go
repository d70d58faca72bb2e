package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/filter"
	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/view"
	"github.com/dyluth/kanban/pkg/board"
)

var (
	showOutputFormat string
	showCriteria     filter.Criteria
)

var showCmd = &cobra.Command{
	Use:   "show [column]",
	Short: "Show the board",
	Long: `Show every card, or only the cards of one column.

Output Formats:
  default - Table with id, column, title and colour
  json    - The columns as JSON, for scripts and jq
  board   - Columns side by side, each card on its own colour`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show the number of cards per column",
	Args:  cobra.NoArgs,
	RunE:  runCounts,
}

var sortCmd = &cobra.Command{
	Use:   "sort <column>",
	Short: "Reverse a column's title order",
	Long: `Flip a column between ascending and descending title order and re-sort
it. Titles are compared with the board's locale.`,
	Args: cobra.ExactArgs(1),
	RunE: runSort,
}

func init() {
	showCmd.Flags().StringVarP(&showOutputFormat, "output", "o", "default", "Output format: default, json or board")
	showCmd.Flags().StringVar(&showCriteria.TitleGlob, "title", "", "Only cards whose title matches this glob")
	showCmd.Flags().StringVar(&showCriteria.Attribute, "attribute", "", "Only cards with this colour")
	rootCmd.AddCommand(showCmd, countsCmd, sortCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	switch showOutputFormat {
	case "default", "json", "board":
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", showOutputFormat),
			[]string{"Valid formats: default, json, board"},
		)
	}

	if err := showCriteria.Validate(); err != nil {
		return printer.Error(
			"invalid title filter",
			fmt.Sprintf("Pattern %q: %v", showCriteria.TitleGlob, err),
			[]string{"Use shell-style globs, e.g. --title '*docs*'"},
		)
	}

	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	columns := s.eng.Columns()
	if len(args) == 1 {
		col, err := s.eng.Column(args[0])
		if err != nil {
			return s.columnError(args[0])
		}
		columns = []board.Column{col}
	}
	columns = showCriteria.Apply(columns)

	out := cmd.OutOrStdout()
	switch showOutputFormat {
	case "json":
		return view.FormatJSON(out, columns)
	case "board":
		fmt.Fprintln(out, view.RenderBoard(columns))
	default:
		view.FormatTable(out, columns, s.cfg.Board.Name)
		if at, ok := s.adapter.LastSaved(); ok {
			fmt.Fprintf(out, "Last saved %s\n", at.Local().Format(time.DateTime))
		}
	}
	return nil
}

func runCounts(cmd *cobra.Command, args []string) error {
	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	view.FormatCounts(cmd.OutOrStdout(), s.eng.Columns(), s.eng.Counts())
	return nil
}

func runSort(cmd *cobra.Command, args []string) error {
	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.eng.ToggleSort(args[0]); err != nil {
		if board.IsInvalidColumn(err) {
			return s.columnError(args[0])
		}
		return err
	}

	col, _ := s.eng.Column(args[0])
	order := "ascending"
	if !col.SortAscending {
		order = "descending"
	}
	printer.Success("Sorted %s %s\n", args[0], order)
	return nil
}
