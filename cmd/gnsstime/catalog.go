package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

func newConstellationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "constellations",
		Short: "List known constellations and their time scales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "LETTER\tCODE\tNAME\tTIME SCALE\tSBAS")
			for _, c := range entities.AllConstellations() {
				fmt.Fprintf(w, "%c\t%s\t%s\t%s\t%t\n", c.Letter(), c.ShortString(), c.LongString(), c.TimeScale(), c.IsSBAS())
			}
			return w.Flush()
		},
	}
}

func newSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sv <id>...",
		Short:   "Describe satellites by RINEX identifier",
		Example: `  gnsstime sv G10 C05 "R 7"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SV\tCONSTELLATION\tPRN\tTIME SCALE")
			for _, arg := range args {
				sv, err := entities.ParseSV(arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", sv, sv.Constellation.LongString(), sv.PRN(), sv.TimeScale())
			}
			return w.Flush()
		},
	}
}
