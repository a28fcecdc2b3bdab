package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/gnsstime/internal/application/handlers"
)

type convertFlags struct {
	target     string
	scale      string
	timeOfWeek bool
	showPath   bool
}

func newConvertCmd() *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert [epoch]",
		Short: "Convert an epoch to another time scale",
		Long: `Converts an epoch such as "2020-01-01T00:00:00 UTC" to the target time scale
using the stored corrections, chaining through intermediate scales when needed.

With no argument, or "-", epochs are read from stdin, one per line.`,
		Example: `  gnsstime convert "2020-06-01T00:00:00 UTC" --to GPST
  gnsstime convert 2020-06-01 --scale BDT --to GST --path`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.target, "to", "t", "", "Target time scale (default: conversion.default_target)")
	cmd.Flags().StringVarP(&flags.scale, "scale", "s", "", "Time scale of bare epochs")
	cmd.Flags().BoolVar(&flags.timeOfWeek, "tow", false, "Also print week number and time of week")
	cmd.Flags().BoolVar(&flags.showPath, "path", false, "Print the corrections applied")

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, flags convertFlags) error {
	return withDeps(cmd.Context(), func(deps *Deps) error {
		out := cmd.OutOrStdout()

		if len(args) == 1 && args[0] != "-" {
			return convertOne(out, cmd.ErrOrStderr(), deps.ConvertHandler, args[0], flags)
		}
		return convertStream(cmd.InOrStdin(), out, cmd.ErrOrStderr(), deps.ConvertHandler, flags)
	})
}

// convertStream converts one epoch per input line. Blank lines and lines
// starting with '#' are skipped; failures are reported and counted.
func convertStream(in io.Reader, out, errOut io.Writer, handler *handlers.ConvertHandler, flags convertFlags) error {
	scanner := bufio.NewScanner(in)
	failed := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := convertOne(out, errOut, handler, line, flags); err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", line, err)
			failed++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d conversions failed", failed)
	}
	return nil
}

func convertOne(out, errOut io.Writer, handler *handlers.ConvertHandler, epoch string, flags convertFlags) error {
	result, err := handler.Handle(handlers.ConvertRequest{
		Epoch:  epoch,
		Scale:  flags.scale,
		Target: flags.target,
	})
	if err != nil {
		return err
	}

	printConversion(out, result, flags)
	if warning := result.Warning(); warning != nil {
		fmt.Fprintf(errOut, "warning: %v\n", warning)
	}
	return nil
}

func printConversion(out io.Writer, result *handlers.ConvertResult, flags convertFlags) {
	conv := result.Conversion
	fmt.Fprintln(out, conv.Epoch)

	if flags.timeOfWeek {
		week, tow := conv.Epoch.TimeOfWeek()
		fmt.Fprintf(out, "  week %d, tow %.9f s\n", week, float64(tow)/1e9)
	}

	if flags.showPath {
		if len(conv.Hops) == 0 {
			fmt.Fprintln(out, "  no correction needed")
		}
		for _, hop := range conv.Hops {
			fmt.Fprintf(out, "  %s%s\n", hop.Correction, hopNote(hop.Inverted, hop.Extrapolated))
		}
	}
}

func hopNote(inverted, extrapolated bool) string {
	var notes []string
	if inverted {
		notes = append(notes, "inverted")
	}
	if extrapolated {
		notes = append(notes, "extrapolated")
	}
	if len(notes) == 0 {
		return ""
	}
	return " (" + strings.Join(notes, ", ") + ")"
}
