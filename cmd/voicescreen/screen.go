package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kbukum/voicescreen/audio"
	"github.com/kbukum/voicescreen/screening"
)

func newScreenCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "screen <file>...",
		Short: "Screen one or more recordings",
		Long: `Screen one or more recordings and print the prediction for each.

Files are processed in parallel, bounded by screening.batch_workers. The
command exits non-zero when any recording fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(args)
			if err != nil {
				return err
			}
			app, err := opts.newApp(true)
			if err != nil {
				return err
			}
			svc, err := buildServices(cmd.Context(), app, true)
			if err != nil {
				return err
			}

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				outcomes, err := svc.orchestrator.Batch(ctx, items)
				if err != nil {
					return err
				}
				rows, failed := screenRows(outcomes)
				if asJSON {
					err = writeJSON(cmd.OutOrStdout(), rows)
				} else {
					err = writeScreenTable(cmd.OutOrStdout(), rows)
				}
				if err != nil {
					return err
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d recordings failed", failed, len(rows))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func readItems(paths []string) ([]screening.Item, error) {
	items := make([]screening.Item, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		items = append(items, screening.Item{
			Name: filepath.Base(p),
			Blob: audio.Blob{Data: data, Hint: audio.HintFromFilename(p)},
		})
	}
	return items, nil
}
