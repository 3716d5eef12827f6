package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/logging"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List the teams known to the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runList(cmd, "teams")
	},
}

var tournamentsCmd = &cobra.Command{
	Use:   "tournaments",
	Short: "List the tournaments known to the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runList(cmd, "tournaments")
	},
}

var listFilter string

func init() {
	for _, c := range []*cobra.Command{teamsCmd, tournamentsCmd} {
		c.Flags().StringVar(&listFilter, "filter", "", "Only names containing this text (case-insensitive)")
		rootCmd.AddCommand(c)
	}
}

func runList(cmd *cobra.Command, what string) error {
	logging.InitStderr(flagVerbose)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	api := newAPI(cfg)

	var names []string
	switch what {
	case "teams":
		names, err = api.GetTeams(context.Background())
	default:
		names, err = api.GetTournaments(context.Background())
	}
	if err != nil {
		logging.Debug("list failed", "what", what, "err", err)
		return errors.New(combo.UserMessage(err))
	}

	names = filterNames(names, listFilter)
	out := cmd.OutOrStdout()
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	logging.Debug("listed", "what", what, "count", len(names))
	return nil
}

// filterNames returns the sorted names containing substr, ignoring case.
func filterNames(names []string, substr string) []string {
	needle := strings.ToLower(strings.TrimSpace(substr))
	var out []string
	for _, n := range names {
		if needle == "" || strings.Contains(strings.ToLower(n), needle) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
