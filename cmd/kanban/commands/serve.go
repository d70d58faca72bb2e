package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/kanban/internal/logging"
	"github.com/dyluth/kanban/internal/printer"
	"github.com/dyluth/kanban/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board over HTTP",
	Long: `Serve the board's commands as a JSON HTTP API until interrupted.

Routes:
  GET    /api/board                      all columns and counts
  GET    /api/counts                     cards per column
  GET    /api/export?format=csv          export (json, csv, pdf)
  GET    /api/columns/{column}           one column
  POST   /api/columns/{column}/cards     add a card
  POST   /api/columns/{column}/recolor   recolour every card of a column
  POST   /api/columns/{column}/sort      toggle a column's sort order
  GET    /api/cards/{card}               one card
  PUT    /api/cards/{card}/title         {"title": "..."}
  POST   /api/cards/{card}/move          {"direction": "left|right"}
  POST   /api/cards/{card}/recolor       recolour a card
  POST   /api/cards/{card}/removal       start removing a card
  DELETE /api/cards/{card}               remove a card
  GET    /healthz                        health check`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, else 127.0.0.1:8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openBoard(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := serveAddr
	if addr == "" {
		addr = s.cfg.Server.Addr
	}

	printer.Step("Serving board '%s' on http://%s\n", s.cfg.Board.Name, addr)
	srv := server.New(s.eng, s.cfg.Board.Name, server.WithLogger(logging.FromContext(cmd.Context())))
	return srv.ListenAndServe(cmd.Context(), addr)
}
