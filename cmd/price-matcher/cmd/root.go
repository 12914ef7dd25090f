// Package cmd implements the CLI commands for price-matcher.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "price-matcher",
	Short: "Match our catalog against competitor prices",
	Long: "price-matcher resolves each target product to a competitor offer per scope, " +
		"using tiered web search, structured page data and storefront product APIs. " +
		"It serves an HTTP API, runs scheduled batches and records price changes.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		runCmd(),
		resolveCmd(),
		versionCommand(),
	)
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
