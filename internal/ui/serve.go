package ui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/daybook/internal/httpapi"
)

func (a *App) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner over HTTP",
		Long: `Start the JSON API on the configured address. The server stops
gracefully on SIGINT or SIGTERM.`,
		Example: `  daybook serve
  daybook serve --addr=127.0.0.1:9000`,
		RunE: func(_ *cobra.Command, _ []string) error {
			svc, err := a.plannerService()
			if err != nil {
				return err
			}
			timeout, err := a.config.Server.Timeout()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := httpapi.NewRouter(svc, a.log, timeout)
			return httpapi.NewServer(addr, router, a.log).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", a.config.Server.Addr, "Listen address")
	return cmd
}
