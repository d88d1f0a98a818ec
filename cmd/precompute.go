package main

import (
	"fmt"
	"os"

	"github.com/UnknownOlympus/hestia/internal/dataset"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newPrecomputeCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "precompute",
		Short: "Geocode every restaurant and write a dataset with resolved coordinates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			application, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer application.Close()

			var progress func(models.Restaurant)
			if isatty.IsTerminal(os.Stderr.Fd()) {
				bar := progressbar.NewOptions(application.catalog.Missing(),
					progressbar.OptionSetDescription("Locating restaurants"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				defer func() { _ = bar.Finish() }()
				progress = func(models.Restaurant) { _ = bar.Add(1) }
			}

			report := application.catalog.Locate(ctx, progress)
			application.log.InfoContext(ctx, "Locate pass completed",
				"located", report.Located,
				"fell_back", report.FellBack,
				"failed", report.Failed,
			)

			if err = dataset.Save(out, application.catalog.Snapshot()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "located %d, fell back %d, failed %d: wrote %s\n",
				report.Located, report.FellBack, report.Failed, out)

			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "path of the dataset to write")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
