package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"launchdash/internal/adapters/dashboard"
	"launchdash/internal/blob"
	"launchdash/internal/config"
	"launchdash/internal/export"
	"launchdash/internal/metrics"
	"launchdash/internal/storage"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr, _ = cmd.Flags().GetString("listen")
			}
			if cmd.Flags().Changed("exports") {
				cfg.Exports.Enabled, _ = cmd.Flags().GetBool("exports")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ln, err := net.Listen("tcp", cfg.ListenAddr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
			}
			return runServer(ctx, cfg, ln)
		},
	}
	cmd.Flags().String("listen", "", "HTTP listen address (overrides listen_addr)")
	cmd.Flags().Bool("exports", true, "enable the export API")
	return cmd
}

// runServer serves the dashboard on ln until ctx is cancelled, then shuts
// down gracefully. It owns ln.
func runServer(ctx context.Context, cfg config.Config, ln net.Listener) error {
	logger := klog.FromContext(ctx)

	blobs, err := blob.Open(ctx, cfg.BlobConfig())
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("open blob store: %w", err)
	}
	ds, err := loadDataset(ctx, cfg, blobs)
	if err != nil {
		_ = ln.Close()
		return err
	}
	records, err := storage.Open(ctx, cfg.StorageConfig())
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() {
		if err := records.Close(); err != nil {
			logger.Error(err, "close record store")
		}
	}()

	reg := metrics.NewRegistry()
	recorder, err := metrics.NewPrometheusRecorder(reg)
	if err != nil {
		_ = ln.Close()
		return err
	}

	opts := []dashboard.Option{
		dashboard.WithChartOptions(cfg.ChartOptions()),
		dashboard.WithMetrics(recorder),
	}
	var worker *export.Worker
	if cfg.Exports.Enabled {
		worker = export.NewWorker(ds, blobs, records,
			export.WithChartOptions(cfg.ChartOptions()),
			export.WithMetrics(recorder),
			export.WithLogger(logger.WithName("export")),
		)
		worker.Start()
		opts = append(opts, dashboard.WithExports(worker))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	mux.Handle("/", dashboard.NewHandler(ds, opts...))

	baseCtx := klog.NewContext(context.WithoutCancel(ctx), logger.WithName("http"))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logger.Info("serving dashboard", "addr", ln.Addr().String(), "blob", blobs.Driver(), "storage", cfg.Storage.Driver, "exports", cfg.Exports.Enabled)

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("shutdown: %w", err)
	}
	if worker != nil {
		if err := worker.Stop(shutdownCtx); err != nil {
			logger.Error(err, "stop export worker")
		}
	}
	return serveErr
}
