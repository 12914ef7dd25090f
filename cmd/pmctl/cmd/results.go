package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/competitor-price-matcher/internal/api/client"
)

func resultsCmd() *cobra.Command {
	var p apiclient.ResultsParams

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show the latest result per target and scope",
		Example: `  pmctl results
  pmctl results --status MATCHED --scope rei
  pmctl results --target sku-1050 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := newClient().ListResults(cmd.Context(), &p)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), resp)
			}
			if resp.Count == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No results found.")
				return nil
			}
			return printResultTable(cmd.OutOrStdout(), resp.Results)
		},
	}
	cmd.Flags().StringVar(&p.Status, "status", "", "filter by status (MATCHED, NOT_FOUND, AMBIGUOUS_SKIPPED, ERROR)")
	cmd.Flags().StringVar(&p.Scope, "scope", "", "filter by scope ID")
	cmd.Flags().StringVar(&p.Target, "target", "", "filter by target ID")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum rows (server default 100)")

	return cmd
}
