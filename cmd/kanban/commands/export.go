package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/export"
	"github.com/dyluth/kanban/internal/logging"
	"github.com/dyluth/kanban/internal/printer"
)

var (
	exportFormat string
	exportFile   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board as JSON, CSV or PDF",
	Long: `Export the board.

Formats:
  json - The stored board document, indented
  csv  - One row per card: column, position, id, title, attribute
  pdf  - A printable report with one section per column

Examples:
  kanban export --format csv > board.csv
  kanban export --format pdf --file board.pdf`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", export.FormatJSON, "Export format: "+strings.Join(export.Formats, ", "))
	exportCmd.Flags().StringVar(&exportFile, "file", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	progress := logging.NewProgress(logging.FromContext(cmd.Context()))

	var w io.Writer = cmd.OutOrStdout()
	if exportFile != "" {
		f, err := os.Create(exportFile)
		if err != nil {
			return printer.Error("export failed", fmt.Sprintf("Error: %v", err), nil)
		}
		defer f.Close()
		w = f
	}

	if err := export.NewExporter(s.eng, "Board: "+s.cfg.Board.Name).Export(w, exportFormat); err != nil {
		return printer.Error(
			"export failed",
			fmt.Sprintf("Error: %v", err),
			[]string{"Valid formats: " + strings.Join(export.Formats, ", ")},
		)
	}

	progress.Done(fmt.Sprintf("Exported %s as %s", s.cfg.Board.Name, exportFormat))
	if exportFile != "" {
		printer.Success("Wrote %s\n", exportFile)
	}
	return nil
}
