package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect Parley snapshot databases",
	Long: `Inspect opens a Parley Pebble database read-only and reports on the
stored snapshots without going through the daemon.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Disable completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
