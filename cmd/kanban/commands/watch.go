package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/relay"
	"github.com/dyluth/kanban/internal/watch"
	"github.com/dyluth/kanban/pkg/board"
)

var (
	watchOutputFormat string
	watchUntil        string
	watchTimeout      time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow board changes live",
	Long: `Print every change made to the board by other kanban processes.

Requires events.redis_url in the board configuration. Changes made while
no watcher is running are not replayed.

Examples:
  kanban watch
  kanban watch -o jsonl | jq .change.action
  kanban watch --until remove --timeout 30s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "text", "Output format: text or jsonl")
	watchCmd.Flags().StringVar(&watchUntil, "until", "", "Exit after the first change with this action (e.g. add, move, remove)")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Stop watching after this long; with --until, give up waiting for it")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	format := watch.OutputFormat(watchOutputFormat)
	if err := format.Validate(); err != nil {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			[]string{"Valid formats: text, jsonl"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Events == nil {
		return printer.Error(
			"events are not configured",
			fmt.Sprintf("Board '%s' does not publish its changes.", cfg.Board.Name),
			[]string{"Add to " + configPath + ":\n  events:\n    redis_url: redis://localhost:6379/0"},
		)
	}

	r, err := relay.NewFromURL(cfg.Events.RedisURL, cfg.Board.Name)
	if err != nil {
		return printer.Error("invalid events configuration", err.Error(), nil)
	}
	defer r.Close()

	sub, err := r.Subscribe(cmd.Context())
	if err != nil {
		return printer.ErrorWithContext(
			"cannot subscribe to board events",
			fmt.Sprintf("Error: %v", err),
			map[string]string{"Redis": cfg.Events.RedisURL, "Board": cfg.Board.Name},
			nil,
		)
	}
	defer sub.Close()

	if format == watch.OutputFormatText {
		printer.Step("Watching board '%s'\n", cfg.Board.Name)
	}
	return watch.Stream(cmd.Context(), sub, cmd.OutOrStdout(), watch.Options{
		Format:  format,
		Until:   board.Action(watchUntil),
		Timeout: watchTimeout,
	})
}
