package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

type resolveFlags struct {
	id, name, brand, gtin, mpn, price string
	scopes                            []string
	json                              bool
}

func resolveCmd() *cobra.Command {
	var f resolveFlags

	c := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one target and print the result per scope",
		Long: "Runs the tiered search for a single target without saving anything. " +
			"Useful for checking why a product does or does not match.",
		Example: `  price-matcher resolve --brand Garmin --mpn 010-02890-00 --price 599.99
  price-matcher resolve --gtin 0753759311473 --scope rei --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := f.target()
			if err != nil {
				return err
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			scopes, err := selectScopes(cfg.Scopes, f.scopes)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			results, err := a.engine.Resolve(cmd.Context(), target, scopes)
			if err != nil {
				return err
			}

			if f.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return printResults(cmd.OutOrStdout(), scopes, results)
		},
	}

	c.Flags().StringVar(&f.id, "id", "adhoc", "target ID used in the output")
	c.Flags().StringVar(&f.name, "name", "", "product name")
	c.Flags().StringVar(&f.brand, "brand", "", "brand")
	c.Flags().StringVar(&f.gtin, "gtin", "", "GTIN, UPC or EAN")
	c.Flags().StringVar(&f.mpn, "mpn", "", "manufacturer part number")
	c.Flags().StringVar(&f.price, "price", "", "our reference price")
	c.Flags().StringSliceVar(&f.scopes, "scope", nil, "configured scope IDs to resolve in (default all)")
	c.Flags().BoolVar(&f.json, "json", false, "print JSON")
	return c
}

func (f *resolveFlags) target() (*domain.TargetProduct, error) {
	t := &domain.TargetProduct{
		ID:      f.id,
		Name:    f.name,
		Brand:   f.brand,
		GTIN:    f.gtin,
		MPN:     f.mpn,
		Enabled: true,
	}
	if !t.HasIdentity() {
		return nil, fmt.Errorf("one of --gtin, --mpn or --name is required")
	}
	if f.price != "" {
		p, err := decimal.NewFromString(f.price)
		if err != nil {
			return nil, fmt.Errorf("invalid --price %q: %w", f.price, err)
		}
		t.ReferencePrice = &p
	}
	return t, nil
}

// selectScopes returns the configured scopes named by ids, in config
// order. No ids selects all of them.
func selectScopes(all []domain.CompetitorScope, ids []string) ([]domain.CompetitorScope, error) {
	if len(ids) == 0 {
		return all, nil
	}

	var out []domain.CompetitorScope
	for _, s := range all {
		if slices.Contains(ids, s.ID) {
			out = append(out, s)
		}
	}
	for _, id := range ids {
		if !slices.ContainsFunc(out, func(s domain.CompetitorScope) bool { return s.ID == id }) {
			return nil, fmt.Errorf("unknown scope %q", id)
		}
	}
	return out, nil
}

func printResults(w io.Writer, scopes []domain.CompetitorScope, results map[string]domain.MatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCOPE\tSTATUS\tTIER\tSOURCE\tPRICE\tDIFF\tURL")
	for _, s := range scopes {
		r, ok := results[s.ID]
		if !ok {
			continue
		}
		source, price, url, diff := "-", "-", "-", "-"
		if r.Offer != nil {
			source = r.Offer.SourceDomain
			price = r.Offer.Price.StringFixed(2)
			url = r.Offer.EvidenceURL
		}
		if r.PriceDiff != nil {
			diff = r.PriceDiff.StringFixed(2)
		}
		if r.Error != "" {
			url = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, r.Status, r.MatchedBy, source, price, diff, url)
	}
	return tw.Flush()
}
