package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

func runsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "runs",
		Short: "Show batch run history",
	}
	root.AddCommand(runListCmd(), runGetCmd())
	return root
}

func runListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List recent runs",
		Example: `  pmctl runs list --limit 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := newClient().ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs yet.")
				return nil
			}
			return printRunTable(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of runs (server default 20)")

	return cmd
}

func runGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show run details",
		Example: `  pmctl runs get 0b9f3c1e-7d2a-4f0e-9c55-1f6c2b8e4a10`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := newClient().GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), run)
			}
			return printRunDetail(cmd.OutOrStdout(), run)
		},
	}
}

func triggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger",
		Short: "Run a batch now",
		Long: "Asks the server to resolve every enabled target against every scope and\n" +
			"waits for the run to finish. Fails if a run is already in progress.",
		Example: `  pmctl trigger
  pmctl trigger --timeout 30m`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, err := newClient().TriggerRun(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), run)
			}
			if err := printRunDetail(cmd.OutOrStdout(), run); err != nil {
				return err
			}
			if run.Status == domain.RunFailed {
				return fmt.Errorf("run %s failed", run.ID)
			}
			return nil
		},
	}
}
