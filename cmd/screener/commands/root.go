package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "ASX stock screener",
	Long: `ASX Stock Screener CLI

Daily TradingView scanner snapshots of the ASX, screened with filters,
sorting, column selection and presets.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener fetch
  go run ./cmd/screener screen --preset top_gainers
  go run ./cmd/screener api
  go run ./cmd/screener scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
