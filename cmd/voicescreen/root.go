package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/voicescreen/bootstrap"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "voicescreen",
		Short:         "Voice screening for motor speech disorders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log at the configured level for one-shot commands")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newScreenCommand(opts))
	rootCmd.AddCommand(newFeaturesCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// newApp loads config and builds the application. One-shot commands log
// warnings only and skip the startup summary unless --verbose is set.
func (o *rootOptions) newApp(oneShot bool) (*bootstrap.App[*AppConfig], error) {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	var appOpts []bootstrap.Option
	if oneShot && !o.verbose {
		cfg.Logging.Level = "warn"
		appOpts = append(appOpts, bootstrap.WithSummaryOutput(io.Discard))
	}
	return bootstrap.NewApp(cfg, appOpts...)
}
