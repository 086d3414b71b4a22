package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newFeaturesCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "features <file>",
		Short: "Print the feature vector of a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(args)
			if err != nil {
				return err
			}
			app, err := opts.newApp(true)
			if err != nil {
				return err
			}
			svc, err := buildServices(cmd.Context(), app, false)
			if err != nil {
				return err
			}

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				wf, err := svc.normalizer.Normalize(ctx, items[0].Blob)
				if err != nil {
					return err
				}
				vec, report := svc.extractor.Extract(ctx, wf)
				degraded := make([]string, 0, len(report.Degraded))
				for _, d := range report.Degraded {
					degraded = append(degraded, d.Feature)
				}
				rep := newFeatureReport(items[0].Name, vec, degraded)
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), rep)
				}
				return writeFeatureTable(cmd.OutOrStdout(), rep)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}
