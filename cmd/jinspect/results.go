package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chris-regnier/jinspect/internal/output"
	"github.com/chris-regnier/jinspect/internal/store"
)

var (
	flagResultsDir    string
	flagResultsFormat string
	flagPruneKeep     int
)

func init() {
	resultsCmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect stored analysis results",
	}
	resultsCmd.PersistentFlags().StringVar(&flagResultsDir, "output", ".jinspect/results", "Directory of stored results")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := store.NewFileStore(flagResultsDir)
			ids, err := fs.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				decision := "-"
				if v, err := fs.ReadVerdict(cmd.Context(), id); err == nil {
					decision = v.Decision
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", id, decision)
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Render a stored run (default: the newest)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runResultsShow,
	}
	showCmd.Flags().StringVar(&flagResultsFormat, "format", "", "Output format: json, sarif, markdown, pretty")

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := store.NewFileStore(flagResultsDir).Prune(cmd.Context(), flagPruneKeep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d runs\n", n)
			return nil
		},
	}
	pruneCmd.Flags().IntVar(&flagPruneKeep, "keep", 10, "Number of runs to keep")

	resultsCmd.AddCommand(listCmd, showCmd, pruneCmd)
	rootCmd.AddCommand(resultsCmd)
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fs := store.NewFileStore(flagResultsDir)

	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		ids, err := fs.List(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("no stored results in %s", flagResultsDir)
		}
		id = ids[0]
	}

	log, err := fs.ReadSARIF(ctx, id)
	if err != nil {
		return err
	}
	verdict, err := fs.ReadVerdict(ctx, id)
	if err != nil {
		return err
	}

	data, err := render(flagResultsFormat, &output.AnalysisOutput{ID: id, Verdict: verdict, SARIFLog: log})
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
