// Command bestcombo is a terminal client for the best-combination service.
//
// Usage:
//
//	bestcombo                       Interactive TUI
//	bestcombo search <item>...      One-shot search, prints matrices
//	bestcombo suggest <input>       Print the suggestion for input
//	bestcombo teams | tournaments   List known names
//	bestcombo history [id]          Saved results
//	bestcombo batch -f sets.txt     Search several selections at once
//	bestcombo events                JSONL event log viewer
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagURL       string
	flagLimit     int
	flagVerbose   bool
	flagNoHistory bool
	flagTrace     bool
)

var rootCmd = &cobra.Command{
	Use:   "bestcombo",
	Short: "Find the cheapest streaming packages covering your teams",
	Long: "bestcombo builds a selection of teams and tournaments with live autocomplete, " +
		"asks the best-combination service for the package combinations covering it " +
		"and renders each one as a coverage matrix.",
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagURL, "url", "", "GraphQL endpoint (overrides config and BESTCOMBO_API_URL)")
	pf.IntVarP(&flagLimit, "limit", "n", 0, "Number of combinations to request (1-5)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	pf.BoolVar(&flagNoHistory, "no-history", false, "Do not record results in the local history")
	rootCmd.Flags().BoolVar(&flagTrace, "trace", false, "Log every UI message to the event log (same as BESTCOMBO_TRACE=1)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
