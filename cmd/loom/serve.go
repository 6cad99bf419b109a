package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"construct-hq/loom/pkg/cli"
	"construct-hq/loom/pkg/completion"
	"construct-hq/loom/pkg/server"
	"construct-hq/loom/pkg/telemetry/metrics"
	"construct-hq/loom/pkg/telemetry/tracing"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		listen string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Loom HTTP server",
		Long: `Start the HTTP server with the specified configuration.

Examples:
  # Start with default config
  loom serve

  # Override listen address
  loom serve --listen 0.0.0.0:3003

  # Validate config and open the store without serving
  loom serve --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				opts.cfg.Server.ListenAddress = listen
			}
			return runServe(cmd, opts, dryRun)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "override listen address")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate config and open the store without serving")
	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions, dryRun bool) error {
	cfg := opts.cfg

	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "configuration valid, %s store opened\n", cfg.Store.Backend)
		return nil
	}

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.MetricsEnabled() {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, registry)
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, tracing.WithVersion(Version))
	if err != nil {
		return cli.NewConfigError("telemetry.tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Telemetry.Tracing.Timeout)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			opts.logger.Warn("failed to flush traces", "error", err)
		}
	}()

	d, backends, err := opts.newDispatcher(st,
		completion.WithMetrics(collector),
		completion.WithTracer(tracer),
	)
	if err != nil {
		return err
	}
	defer backends.Close()

	srv := server.New(cfg, d, backends,
		server.WithLogger(opts.logger),
		server.WithMetrics(collector),
		server.WithTracer(tracer),
		server.WithVersion(Version, GitCommit, BuildDate),
		server.WithReadinessCheck("store", func(ctx context.Context) error {
			_, err := st.Defaults(ctx)
			return err
		}),
	)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}
