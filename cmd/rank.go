package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/UnknownOlympus/hestia/internal/ranking"
	"github.com/spf13/cobra"
)

func newRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <address>",
		Short: "Print the restaurants ordered by distance from an address",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			outcome := application.finder.Search(cmd.Context(), strings.Join(args, " "))
			if outcome.Err != nil {
				return errors.New(outcome.Message())
			}

			return writeResults(cmd.OutOrStdout(), outcome.Results)
		},
	}
}

// writeResults prints results as an aligned table.
func writeResults(w io.Writer, results []ranking.Result) error {
	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(table, "#\tNAME\tADDRESS\tDISTANCE")
	for i, result := range results {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\n",
			i+1, result.Restaurant.Name, result.Restaurant.Address, result.Distance)
	}

	return table.Flush()
}
