package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/config"
	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/scaffold"
)

var (
	forceInit    bool
	initName     string
	initTemplate string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a board configuration",
	Long: `Create a board configuration stored as JSON files under .kanban/ next
to the configuration.

Templates:
  basic    - To do, Doing, Done
  scrum    - Backlog, Sprint, In progress, Review, Done
  personal - Later, Now, Done

The format follows the file extension of --config: board.yml is written as
YAML, board.toml as TOML.

Use --force to overwrite an existing configuration. Stored cards are kept.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration")
	initCmd.Flags().StringVar(&initName, "name", "", "Board name (default: the template's)")
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", scaffold.DefaultTemplate, "Starter board: "+strings.Join(scaffold.Templates(), ", "))
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := scaffold.Load(initTemplate)
	if err != nil {
		return printer.Error("invalid template", err.Error(), nil)
	}
	if initName != "" {
		cfg.Board.Name = initName
	}
	if err := cfg.Validate(); err != nil {
		return printer.Error("invalid board name", err.Error(), nil)
	}

	if err := config.Write(configPath, cfg, forceInit); err != nil {
		return printer.Error(
			"initialization failed",
			fmt.Sprintf("Error: %v", err),
			[]string{"Overwrite the existing configuration:\n  kanban init --force"},
		)
	}

	printer.Success("Created %s for board '%s'\n", configPath, cfg.Board.Name)
	printer.Info("  Cards are stored in %s\n", filepath.Join(filepath.Dir(configPath), cfg.Storage.File.Dir))
	return nil
}
