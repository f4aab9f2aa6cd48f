package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"holidaycal/internal/publish"
	"holidaycal/internal/web"
)

func (a *app) newServeCmd() *cobra.Command {
	var withPublisher bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the holiday HTTP API",
		Long: `Serve the HTTP API until interrupted:

  GET /health
  GET /api/calendars
  GET /api/holidays?calendar=SIFMA,FRB&year=2024
  GET /api/holidays.ics?calendar=UK&year=2024&years=2
  GET /api/weekend?calendar=SIFMA&t=2024-03-29T12:00:00Z

With --publish the scheduled publisher runs alongside the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, ctx := errgroup.WithContext(cmd.Context())

			if withPublisher {
				p, err := publish.New(a.cfg, a.reg)
				if err != nil {
					return err
				}
				g.Go(func() error { return p.Run(ctx) })
			}
			g.Go(func() error { return web.StartServer(ctx, a.cfg, a.reg) })
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&withPublisher, "publish", false, "Also run the scheduled publisher")
	return cmd
}
