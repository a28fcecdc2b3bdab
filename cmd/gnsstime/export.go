package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

type exportFlags struct {
	format string
	output string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export corrections to file",
		Long:  "Exports corrections to JSON or CSV, in the format accepted by import, or to a markdown table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "json", "Output format (json, csv, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	if !slices.Contains(validFormats, flags.format) {
		return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validFormats)
	}

	return withDeps(cmd.Context(), func(deps *Deps) error {
		n, err := writeOutput(cmd.OutOrStdout(), flags.output, func(w io.Writer) (int, error) {
			return exportTo(cmd.Context(), deps, w, flags.format)
		})
		if err != nil {
			return err
		}

		if flags.output != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d corrections to %s\n", n, flags.output)
		}
		return nil
	})
}

func exportTo(ctx context.Context, deps *Deps, w io.Writer, format string) (int, error) {
	if format != "markdown" {
		return deps.ExportHandler.Handle(ctx, w, format)
	}

	list, err := deps.CorrectionHandler.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := formatMarkdown(w, list); err != nil {
		return 0, fmt.Errorf("formatting output: %w", err)
	}
	return len(list), nil
}

// writeOutput runs write against the named file, or stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) (int, error)) (n int, err error) {
	if path == "" {
		return write(stdout)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	return write(f)
}

func formatMarkdown(w io.Writer, list []entities.StoredCorrection) error {
	if _, err := fmt.Fprintf(w, "# Exported Corrections\n\nTotal: %d corrections\n\n", len(list)); err != nil {
		return err
	}

	if _, err := fmt.Fprint(w, "| Source | Target | Reference | Polynomial | Validity | Origin |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|--------|--------|-----------|------------|----------|--------|\n"); err != nil {
		return err
	}

	for i := range list {
		c := list[i].Correction
		validity := ""
		if c.Validity() != 0 {
			validity = c.Validity().String()
		}
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
			c.Source(),
			c.Target(),
			c.Reference(),
			escapeMarkdown(c.Polynomial().String()),
			validity,
			escapeMarkdown(list[i].Origin),
		); err != nil {
			return err
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
