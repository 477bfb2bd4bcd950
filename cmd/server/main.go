package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "styleme",
	Short: "StyleMe product search and shopping assistant API",
	Long: `StyleMe serves natural-language product search backed by an external
retrieval service with a local catalog fallback, the storefront product listing,
and the chat shopping assistant.`,
	Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
