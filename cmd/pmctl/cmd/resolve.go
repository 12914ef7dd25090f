package cmd

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

func resolveCmd() *cobra.Command {
	var (
		f       targetFlags
		id      string
		domains []string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one product without saving it",
		Long: "Runs the tiered competitor search for one product on the server and\n" +
			"prints the result per scope. With --domain, each domain becomes its own\n" +
			"specific scope; otherwise the server's configured scopes are used.",
		Example: `  pmctl resolve --brand Garmin --mpn 010-02890-00 --price 599.99
  pmctl resolve --gtin 0753759311473 --domain rei.com --domain backcountry.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := f.target(id)
			if err != nil {
				return err
			}

			resp, err := newClient().Resolve(cmd.Context(), t, specificScopes(domains))
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), resp)
			}
			return printResolveTable(cmd.OutOrStdout(), resp.Results, slices.Sorted(maps.Keys(resp.Results)))
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&id, "id", "adhoc", "target ID used in the output")
	cmd.Flags().StringArrayVar(&domains, "domain", nil, "competitor domain to search (repeatable)")

	return cmd
}

// specificScopes turns each competitor domain into a specific scope with
// the domain as its ID.
func specificScopes(domains []string) []domain.CompetitorScope {
	var scopes []domain.CompetitorScope
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		scopes = append(scopes, domain.CompetitorScope{
			ID:      d,
			Name:    d,
			Mode:    domain.ScopeSpecific,
			Domains: []string{d},
		})
	}
	return scopes
}
