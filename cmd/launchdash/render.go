package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"launchdash/internal/chart"
	"launchdash/internal/launch"
)

const (
	pieFile     = "success-pie.png"
	scatterFile = "payload-scatter.png"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render both dashboard charts to PNG files",
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

			site, _ := cmd.Flags().GetString("site")
			out, _ := cmd.Flags().GetString("out")
			rng := ds.PayloadBounds().Range()
			if cmd.Flags().Changed("min") {
				rng.Lo, _ = cmd.Flags().GetFloat64("min")
			}
			if cmd.Flags().Changed("max") {
				rng.Hi, _ = cmd.Flags().GetFloat64("max")
			}
			opts := cfg.ChartOptions()

			summary, err := ds.AggregateOutcomes(site)
			if err != nil {
				return err
			}
			points, err := ds.FilterPayloadOutcomes(site, rng)
			if err != nil {
				return err
			}
			pie, err := chart.Pie(summary, opts)
			pie, err = placeholderIfEmpty(pie, err, summary.Title, opts)
			if err != nil {
				return fmt.Errorf("render pie chart: %w", err)
			}
			title := launch.ScatterTitle(site)
			scatter, err := chart.Scatter(points, title, opts)
			scatter, err = placeholderIfEmpty(scatter, err, title, opts)
			if err != nil {
				return fmt.Errorf("render scatter chart: %w", err)
			}

			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			for name, payload := range map[string][]byte{pieFile: pie, scatterFile: scatter} {
				path := filepath.Join(out, name)
				if err := os.WriteFile(path, payload, 0o644); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s to %s\n", pieFile, scatterFile, out)
			return err
		},
	}
	cmd.Flags().String("site", launch.AllSites, "launch site, or ALL")
	cmd.Flags().Float64("min", 0, "minimum payload mass in kg (default: dataset minimum)")
	cmd.Flags().Float64("max", 0, "maximum payload mass in kg (default: dataset maximum)")
	cmd.Flags().String("out", ".", "output directory")
	return cmd
}

func placeholderIfEmpty(payload []byte, err error, title string, opts chart.Options) ([]byte, error) {
	if errors.Is(err, chart.ErrEmpty) {
		return chart.Placeholder(title, "No launches match the selection", opts)
	}
	return payload, err
}
