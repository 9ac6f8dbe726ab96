// Package cli implements the veritas command line.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/snappy-loop/veritas/internal/bootstrap"
	"github.com/snappy-loop/veritas/internal/config"
	"github.com/spf13/cobra"
)

// Version is set by the main package.
var Version = "dev"

var (
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "veritas",
	Short: "Veritas - claim extraction and web-backed fact-checking",
	Long: `Veritas extracts factual claims from text, searches the web for each
claim and asks a language model whether the retrieved snippets support it.

Configuration is read from the environment (and a .env file if present),
using the same variables as the API server.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		cfg = config.Load()
		level := "warn"
		if verbose {
			level = "debug"
		}
		bootstrap.SetupLogging(level, cmd.ErrOrStderr())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "veritas %s\n", Version)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.AddCommand(versionCmd)
}
