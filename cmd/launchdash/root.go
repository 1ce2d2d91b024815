package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"launchdash/internal/blob"
	"launchdash/internal/config"
	"launchdash/internal/launch"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "launchdash",
		Short:         "SpaceX launch records dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger := klog.Background().WithName("launchdash")
			cmd.SetContext(klog.NewContext(cmd.Context(), logger))
		},
	}
	root.PersistentFlags().String("config", "", "path to a YAML config file")
	root.PersistentFlags().String("dataset", "", "launch CSV path (overrides dataset.path)")

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	root.PersistentFlags().AddGoFlagSet(klogFlags)

	root.AddCommand(newServeCmd(), newSitesCmd(), newRenderCmd())
	return root
}

// loadConfig layers the --config file, the environment and the shared flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if dataset, _ := cmd.Flags().GetString("dataset"); dataset != "" {
		cfg.Dataset.Path = dataset
		cfg.Dataset.BlobKey = ""
	}
	return cfg, nil
}

// loadDataset reads the launch CSV from the blob store when a key is
// configured and from the local path otherwise. blobs may be nil when no key
// is set.
func loadDataset(ctx context.Context, cfg config.Config, blobs blob.Store) (*launch.Dataset, error) {
	var (
		ds  *launch.Dataset
		err error
	)
	if key := cfg.Dataset.BlobKey; key != "" {
		if blobs == nil {
			if blobs, err = blob.Open(ctx, cfg.BlobConfig()); err != nil {
				return nil, fmt.Errorf("open blob store: %w", err)
			}
		}
		ds, err = launch.LoadBlob(ctx, blobs, key)
	} else {
		ds, err = launch.LoadFile(cfg.Dataset.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	klog.FromContext(ctx).Info("dataset loaded", "records", ds.Len(), "sites", len(ds.Sites()))
	return ds, nil
}
