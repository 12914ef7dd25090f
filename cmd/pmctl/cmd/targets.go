package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

func targetsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "targets",
		Short: "Manage target products",
		Long: "Manage the products priced against competitors. A target needs at\n" +
			"least one of GTIN, MPN or name; brand sharpens the MPN and name queries.",
	}

	root.AddCommand(
		targetListCmd(),
		targetGetCmd(),
		targetSetCmd(),
		targetDeleteCmd(),
	)

	return root
}

func targetListCmd() *cobra.Command {
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List targets",
		Example: `  pmctl targets list
  pmctl targets list --enabled --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := newClient().ListTargets(cmd.Context(), enabledOnly)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), targets)
			}
			if len(targets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No targets found.")
				return nil
			}
			return printTargetTable(cmd.OutOrStdout(), targets)
		},
	}
	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "only enabled targets")

	return cmd
}

func targetGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show target details",
		Example: `  pmctl targets get sku-1050`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := newClient().GetTarget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), t)
			}
			return printTargetDetail(cmd.OutOrStdout(), t)
		},
	}
}

type targetFlags struct {
	name, brand, gtin, mpn, price string
	disabled                      bool
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.brand, "brand", "", "brand")
	cmd.Flags().StringVar(&f.gtin, "gtin", "", "GTIN, UPC or EAN")
	cmd.Flags().StringVar(&f.mpn, "mpn", "", "manufacturer part number")
	cmd.Flags().StringVar(&f.price, "price", "", "our reference price")
}

func (f *targetFlags) target(id string) (*domain.TargetProduct, error) {
	t := &domain.TargetProduct{
		ID:      id,
		Name:    f.name,
		Brand:   f.brand,
		GTIN:    f.gtin,
		MPN:     f.mpn,
		Enabled: !f.disabled,
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

func targetSetCmd() *cobra.Command {
	var f targetFlags

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Create or replace a target",
		Long: "Create a target, or replace every field of the target with the same ID.\n" +
			"Targets are enabled unless --disabled is given.",
		Example: `  pmctl targets set sku-1050 --brand Garmin --mpn 010-02890-00 \
    --name "Edge 1050 GPS Bike Computer" --price 599.99

  pmctl targets set sku-rtl515 --gtin 0753759311473 --disabled`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := f.target(args[0])
			if err != nil {
				return err
			}
			saved, err := newClient().UpsertTarget(cmd.Context(), t)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target %s saved.\n", saved.ID)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.disabled, "disabled", false, "exclude from batch runs")

	return cmd
}

func targetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a target",
		Example: `  pmctl targets delete sku-1050`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newClient().DeleteTarget(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Target %s deleted.\n", args[0])
			return nil
		},
	}
}
