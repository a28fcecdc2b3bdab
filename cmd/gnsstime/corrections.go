package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/gnsstime/internal/application/handlers"
	"github.com/ersonp/gnsstime/internal/domain/entities"
)

func newCorrectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "corrections",
		Aliases: []string{"corr"},
		Short:   "Manage time corrections",
		RunE:    runCorrectionsList,
	}

	cmd.AddCommand(
		newCorrectionsListCmd(),
		newCorrectionsAddCmd(),
		newCorrectionsRemoveCmd(),
		newCorrectionsPruneCmd(),
		newCorrectionsPairsCmd(),
	)

	return cmd
}

func newCorrectionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored corrections",
		Args:  cobra.NoArgs,
		RunE:  runCorrectionsList,
	}
}

func runCorrectionsList(cmd *cobra.Command, _ []string) error {
	return withDeps(cmd.Context(), func(deps *Deps) error {
		list, err := deps.CorrectionHandler.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintf(out, "No corrections in dataset %q.\n", globalDataset)
			return nil
		}
		return printCorrections(out, list)
	})
}

func printCorrections(out io.Writer, list []entities.StoredCorrection) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPAIR\tREFERENCE\tPOLYNOMIAL\tVALIDITY\tORIGIN")
	for i := range list {
		c := list[i].Correction
		validity := "-"
		if c.Validity() != 0 {
			validity = c.Validity().String()
		}
		fmt.Fprintf(w, "%s\t%s->%s\t%s\t%s\t%s\t%s\n",
			list[i].ID, c.Source(), c.Target(), c.Reference(), c.Polynomial(), validity, list[i].Origin)
	}
	return w.Flush()
}

type addFlags struct {
	source    string
	target    string
	reference string
	validity  string
	origin    string
}

func newCorrectionsAddCmd() *cobra.Command {
	var flags addFlags

	cmd := &cobra.Command{
		Use:   "add <coefficient>...",
		Short: "Add a correction",
		Long: `Adds a correction from source to target. Coefficients are the polynomial terms
in seconds, s/s and s/s^2, evaluated against the reference epoch. Put "--"
before the coefficients when one is negative.`,
		Example: `  gnsstime corrections add --from UTC --to GPST --ref 2017-01-01 18
  gnsstime corrections add --from GST --to GPST --ref "2023-06-15T00:00:00 GST" --validity 24h -- 1.5e-9 -2e-14`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrectionsAdd(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.source, "from", "", "Source time scale (required)")
	cmd.Flags().StringVar(&flags.target, "to", "", "Target time scale (required)")
	cmd.Flags().StringVar(&flags.reference, "ref", "", "Reference epoch, in the source scale (required)")
	cmd.Flags().StringVar(&flags.validity, "validity", "", "Validity half-width, e.g. 24h")
	cmd.Flags().StringVar(&flags.origin, "origin", "manual", "Where the correction came from")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("ref")

	return cmd
}

func runCorrectionsAdd(cmd *cobra.Command, args []string, flags addFlags) error {
	coefficients, err := parseCoefficients(args)
	if err != nil {
		return err
	}

	return withDeps(cmd.Context(), func(deps *Deps) error {
		stored, err := deps.CorrectionHandler.Add(cmd.Context(), handlers.AddRequest{
			Source:       flags.source,
			Target:       flags.target,
			Reference:    flags.reference,
			Coefficients: coefficients,
			Validity:     flags.validity,
			Origin:       flags.origin,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n  %s\n", stored.ID, stored.Correction)
		return nil
	})
}

func parseCoefficients(args []string) ([]float64, error) {
	coefficients := make([]float64, 0, len(args))
	for _, arg := range args {
		for _, field := range strings.Fields(arg) {
			c, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid coefficient %q", field)
			}
			coefficients = append(coefficients, c)
		}
	}
	return coefficients, nil
}

func newCorrectionsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove corrections by ID",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(deps *Deps) error {
				for _, id := range args {
					if err := deps.CorrectionHandler.Remove(cmd.Context(), id); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
				}
				return nil
			})
		},
	}
}

func newCorrectionsPruneCmd() *cobra.Command {
	var weekly bool

	cmd := &cobra.Command{
		Use:   "prune <epoch>",
		Short: "Discard corrections published before an epoch",
		Long: `Discards corrections whose reference epoch is earlier than the given epoch.
With --weekly, corrections from the week preceding the epoch are kept.`,
		Example: `  gnsstime corrections prune "2024-01-01T00:00:00 GPST" --weekly`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(deps *Deps) error {
				removed, err := deps.CorrectionHandler.Prune(cmd.Context(), handlers.PruneRequest{
					Before: args[0],
					Weekly: weekly,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d corrections\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&weekly, "weekly", false, "Keep the week preceding the epoch")

	return cmd
}

func newCorrectionsPairsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "List the time scale pairs linked by corrections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cmd.Context(), func(deps *Deps) error {
				pairs := deps.CorrectionHandler.Pairs()
				if len(pairs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No corrections loaded.")
					return nil
				}
				for _, pair := range pairs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s <-> %s\n", pair[0], pair[1])
				}
				return nil
			})
		},
	}
}
