package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ersonp/gnsstime/internal/application/handlers"
	"github.com/ersonp/gnsstime/internal/infrastructure/metrics"
	"github.com/ersonp/gnsstime/internal/infrastructure/watcher"
)

type watchFlags struct {
	metricsAddr string
	onConflict  string
	initial     bool
}

func newWatchCmd() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch <file>...",
		Short: "Re-import correction files whenever they change",
		Long: `Watches correction tables and imports them again each time they are written,
so that a feed dropping fresh tables keeps the dataset current. Serves
Prometheus metrics when an address is configured.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "Metrics listen address (default: metrics.addr)")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "overwrite", "Conflict handling (skip, overwrite)")
	cmd.Flags().BoolVar(&flags.initial, "initial", true, "Import every file once before watching")

	return cmd
}

func runWatch(cmd *cobra.Command, files []string, flags watchFlags) error {
	onConflict, err := parseConflictStrategy(flags.onConflict)
	if err != nil {
		return err
	}

	return withInternalDeps(cmd.Context(), func(d *internalDeps) error {
		logger := d.Logger.With(zap.String("dataset", globalDataset))

		reimport := func(ctx context.Context, path string) error {
			result, err := d.ImportHandler.Handle(ctx, path, handlers.ImportOptions{OnConflict: onConflict})
			if err != nil {
				return err
			}
			for _, e := range result.Errors {
				logger.Warn("invalid correction row", zap.String("file", path), zap.Error(e))
			}
			logger.Info("corrections reloaded",
				zap.String("file", path),
				zap.Int("imported", result.Imported),
				zap.Int("skipped", result.Skipped),
				zap.Int("corrections", d.conversions.Snapshot().Len()),
			)
			return nil
		}

		if flags.initial {
			for _, file := range files {
				if err := reimport(cmd.Context(), file); err != nil {
					return fmt.Errorf("importing %s: %w", file, err)
				}
			}
		}

		w, err := watcher.New(files, d.Config.Watch.Debounce, reimport, logger)
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			return w.Run(ctx)
		})

		addr := flags.metricsAddr
		if addr == "" {
			addr = d.Config.Metrics.Addr
		}
		if addr != "" {
			server := metrics.NewServer(addr, d.metrics, logger)
			g.Go(func() error {
				return server.Run(ctx)
			})
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %d files (Ctrl+C to stop)\n", len(files))
		return g.Wait()
	})
}

