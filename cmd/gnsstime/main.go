// Package main provides the entry point for the gnsstime CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ersonp/gnsstime/internal/infrastructure/config"
)

var (
	version       = "0.1.0-dev"
	globalDataset string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "gnsstime",
		Short:         "Convert epochs between GNSS and civil time scales",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalDataset, "dataset", "d", config.DefaultDataset, "Correction dataset to operate on")

	rootCmd.AddCommand(
		newInitCmd(),
		newConvertCmd(),
		newCorrectionsCmd(),
		newImportCmd(),
		newExportCmd(),
		newHistoryCmd(),
		newDatasetsCmd(),
		newConstellationsCmd(),
		newSVCmd(),
		newWatchCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
