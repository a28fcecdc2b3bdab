package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/gnsstime/internal/application/handlers"
	"github.com/ersonp/gnsstime/internal/domain/services"
)

type importFlags struct {
	format     string
	dryRun     bool
	onConflict string
	origin     string
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import corrections from JSON or CSV",
		Long:  "Imports a correction table. Invalid rows are reported and skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "skip", "Conflict handling (skip, overwrite)")
	cmd.Flags().StringVar(&flags.origin, "origin", "", "Origin recorded for rows without one (default: file name)")

	return cmd
}

func parseConflictStrategy(value string) (services.ConflictStrategy, error) {
	switch strategy := services.ConflictStrategy(value); strategy {
	case services.ConflictSkip, services.ConflictOverwrite:
		return strategy, nil
	default:
		return "", fmt.Errorf("invalid --on-conflict value %q (valid: skip, overwrite)", value)
	}
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	onConflict, err := parseConflictStrategy(flags.onConflict)
	if err != nil {
		return err
	}

	return withDeps(cmd.Context(), func(deps *Deps) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Importing %s...\n", filePath)

		result, err := deps.ImportHandler.Handle(cmd.Context(), filePath, handlers.ImportOptions{
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: onConflict,
			Origin:     flags.origin,
		})
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		printImportResult(out, result, flags.dryRun)
		return nil
	})
}

func printImportResult(out io.Writer, result *handlers.ImportResult, dryRun bool) {
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nValidation errors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  %s\n", e.Error())
		}
	}

	fmt.Fprintln(out)
	if dryRun {
		fmt.Fprintf(out, "Dry run: %d corrections would be imported", result.Imported)
	} else {
		fmt.Fprintf(out, "Imported: %d corrections", result.Imported)
	}

	if result.Skipped > 0 {
		fmt.Fprintf(out, ", %d skipped (already exist)", result.Skipped)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, ", %d errors", len(result.Errors))
	}

	fmt.Fprintln(out)
}
