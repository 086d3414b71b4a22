// Package bootstrap runs the voicescreen binaries: it validates config,
// starts registered components in order, runs lifecycle hooks, prints a
// startup summary and shuts everything down on SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.RegisterComponent(store)
//	app.RegisterComponent(httpServer)
//	return app.Run(ctx)
//
// RunTask wraps a finite job, such as screening a list of files from the
// command line, in the same lifecycle.
package bootstrap
