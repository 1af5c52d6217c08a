package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ftd",
	Short: "SEC fails-to-deliver data feed",
	Long: `FTD Feed CLI

Downloads SEC fails-to-deliver archives, rebuilds them into per-period
CSV archives, loads the records into Postgres, and serves them over a
REST API.

Usage:
  go run ./cmd/ftd [command]

Examples:
  go run ./cmd/ftd sync
  go run ./cmd/ftd ingest
  go run ./cmd/ftd serve
  go run ./cmd/ftd route 2010-10-01T14:00:00Z`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
