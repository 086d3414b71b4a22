package main

import (
	"path"

	"github.com/spf13/cobra"

	"github.com/kbukum/voicescreen/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP screening API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.newApp(false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			svc, err := buildServices(ctx, app, true)
			if err != nil {
				return err
			}

			srv, err := server.New(app.Cfg.Server, app.Logger, svc.metrics)
			if err != nil {
				return err
			}
			server.NewScreeningHandler(svc.orchestrator, app.Cfg.Server.MaxBatchFiles, app.Logger).Register(srv.GinEngine())
			srv.RegisterDefaultEndpoints(app.Name, app.Components.HealthAll)
			for _, r := range srv.GinEngine().Routes() {
				app.Summary.TrackRoute(r.Method, r.Path, path.Base(r.Handler))
			}

			// Registered last so it starts after the model and stops first.
			if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
				return err
			}
			return app.Run(ctx)
		},
	}
}
