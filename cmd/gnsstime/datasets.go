package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ersonp/gnsstime/internal/application/handlers"
	"github.com/ersonp/gnsstime/internal/infrastructure/config"
)

func newDatasetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "Manage correction datasets",
		Long: `Datasets are independent correction sets, each with its own database, such as
broadcast corrections kept apart from final products. Select one with --dataset.`,
		RunE: runDatasetsList,
	}

	cmd.AddCommand(
		newDatasetsListCmd(),
		newDatasetsCreateCmd(),
		newDatasetsDeleteCmd(),
	)

	return cmd
}

func datasetHandler() (*handlers.DatasetHandler, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	if !config.Exists(cwd) {
		return nil, fmt.Errorf("gnsstime not initialized in %s (run 'gnsstime init' first)", cwd)
	}
	return handlers.NewDatasetHandler(cwd, storeOpener), nil
}

func newDatasetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all datasets",
		Args:  cobra.NoArgs,
		RunE:  runDatasetsList,
	}
}

func runDatasetsList(cmd *cobra.Command, _ []string) error {
	handler, err := datasetHandler()
	if err != nil {
		return err
	}

	datasets, err := handler.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(datasets) == 0 {
		fmt.Fprintln(out, "No datasets configured.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION\tDATABASE")
	for _, d := range datasets {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Description, d.Path)
	}
	return w.Flush()
}

func newDatasetsCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := datasetHandler()
			if err != nil {
				return err
			}

			info, err := handler.Create(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created dataset %q (%s)\n", info.Name, info.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Dataset description")

	return cmd
}

func newDatasetsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a dataset and its corrections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("deleting dataset %q removes all its corrections; pass --force to confirm", args[0])
			}

			handler, err := datasetHandler()
			if err != nil {
				return err
			}

			if err := handler.Delete(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted dataset %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm deletion")

	return cmd
}
