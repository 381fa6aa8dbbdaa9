package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/completion-estimator/internal"
	"github.com/iksnae/completion-estimator/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr      string
	serveNoHistory bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host estimation sessions over HTTP",
	Long: `Start an HTTP server that hosts any number of independent sessions.

Routes:
  POST   /api/sessions                     create a session
  POST   /api/sessions/:id/analyze         reset, chunk {"text": ...} and run in the background
  POST   /api/sessions/:id/reset           reset the session
  GET    /api/sessions/:id                 series, cursor, state and convergence
  GET    /api/sessions/:id/charts/:name    keywords, kdr or entities as SVG (?format=png)
  DELETE /api/sessions/:id                 drop the session
  GET    /healthcheck`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		var history *internal.History
		if !serveNoHistory {
			h, err := openHistory()
			if err != nil {
				return err
			}
			defer h.Close()
			history = h
		}

		srv, err := server.New(cfg, history)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoHistory, "no-history", false, "Do not record hosted runs in the history")
}
