package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List launch sites and the payload bounds of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ds, err := loadDataset(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VALUE\tLABEL")
			for _, opt := range ds.SiteOptions() {
				fmt.Fprintf(tw, "%s\t%s\n", opt.Value, opt.Label)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			bounds := ds.PayloadBounds()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "payload bounds: %g - %g kg\n", bounds.Min, bounds.Max)
			return err
		},
	}
}
