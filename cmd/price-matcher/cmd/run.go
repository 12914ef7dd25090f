package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/competitor-price-matcher/internal/config"
)

// TriggerCLI labels runs started from the command line.
const TriggerCLI = "cli"

func runCmd() *cobra.Command {
	var sheetIn, sheetOut string

	c := &cobra.Command{
		Use:   "run",
		Short: "Run one batch now and exit",
		Long: "Resolves every target against every configured scope once, saves the " +
			"results, notifies on changes and exits non-zero if the run failed.",
		Example: `  price-matcher run
  price-matcher run --sheet targets.tsv --out results.tsv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if sheetIn != "" {
				cfg.Targets.Source = config.SourceSheet
				cfg.Targets.SheetPath = sheetIn
			}
			if sheetOut != "" {
				cfg.Output.SheetPath = sheetOut
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			run, err := a.engine.RunBatch(ctx, TriggerCLI)
			if run != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "run %s %s: %d targets, %d matched, %d changes\n",
					run.ID, run.Status, run.Targets, run.Matched, run.Changes)
			}
			return err
		},
	}

	c.Flags().StringVar(&sheetIn, "sheet", "", "read targets from this worksheet instead of the configured source")
	c.Flags().StringVar(&sheetOut, "out", "", "also write results to this worksheet")
	return c
}
