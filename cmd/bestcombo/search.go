package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/coverage"
	"github.com/adrior11/check24-best-combination-submission/internal/logging"
	"github.com/adrior11/check24-best-combination-submission/internal/poll"
	"github.com/adrior11/check24-best-combination-submission/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search <item>...",
	Short: "Search the best combination for the given teams or tournaments",
	Long: "Enqueues the selection, polls until the server reports READY (or the poll " +
		"ceiling is reached) and prints every combination as a coverage matrix.",
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var searchNoEnqueue bool

func init() {
	searchCmd.Flags().BoolVar(&searchNoEnqueue, "no-enqueue", false, "Skip the enqueue mutation and poll directly")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.InitStderr(flagVerbose)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	api := newAPI(cfg)
	opts := fetchOptions(cfg)
	items := parseItems(args)

	if !searchNoEnqueue && len(items) > 0 {
		status, err := api.EnqueueBestCombination(ctx, items, opts)
		if err != nil {
			logging.Warn("enqueue failed", "err", err)
		} else {
			logging.Debug("enqueued", "status", status, "items", len(items))
		}
	}

	poller := poll.New(poll.Config{
		Fetcher:  api,
		Interval: cfg.PollInterval(),
		Ceiling:  cfg.PollCeiling(),
	})
	data, err := poller.Fetch(ctx, items, opts)
	if err != nil {
		logging.Debug("search failed", "err", err)
		return errors.New(combo.UserMessage(err))
	}

	history, err := openHistory(cfg)
	if err != nil {
		logging.Warn("history unavailable", "err", err)
	} else if history != nil {
		defer history.Close()
		run, err := history.SaveResult(items, opts, data, time.Now())
		if err != nil {
			logging.Warn("failed to save result", "err", err)
		} else {
			logging.Debug("saved", "run", run.ID)
			if cfg.History.Keep > 0 {
				history.Prune(cfg.History.Keep)
			}
		}
	}

	out := cmd.OutOrStdout()
	if len(data) == 0 {
		fmt.Fprintln(out, "No combination covers this selection.")
		return nil
	}
	fmt.Fprintln(out, ui.RenderResults(data, coverage.NewMemo(data), cfg.UI.Currency))
	return nil
}
