package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "viewer",
	Short: "Industry/FRED series viewer backend",
	Long: `Industry Data Visualizer CLI

Backend-for-frontend for the Industry model and FRED series dashboards:
view sessions, chart projection, search and sector/model catalogs.

Usage:
  go run ./cmd/viewer [command]

Examples:
  go run ./cmd/viewer api
  go run ./cmd/viewer render --ids 101,GDPC1 --out chart.png
  go run ./cmd/viewer search gdp --mode global
  go run ./cmd/viewer sectors consumer_goods`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
