package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/logging"
	"github.com/adrior11/check24-best-combination-submission/internal/poll"
	"github.com/adrior11/check24-best-combination-submission/internal/store"
	"github.com/adrior11/check24-best-combination-submission/internal/ui"
)

var batchCmd = &cobra.Command{
	Use:   "batch [selection]...",
	Short: "Search several selections concurrently",
	Long: "Each selection is a comma-separated list of items, given as an argument or " +
		"as one line of the --file. Selections are searched with bounded concurrency " +
		"and summarized in one table.",
	RunE: runBatch,
}

var (
	batchFile        string
	batchConcurrency int
)

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "File with one selection per line ('-' for stdin)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 4, "Selections searched at once")
	rootCmd.AddCommand(batchCmd)
}

// batchResult is the outcome of one selection.
type batchResult struct {
	Items []string
	Data  []combo.Combination
	Err   error
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logging.InitStderr(flagVerbose)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sets := make([][]string, 0, len(args))
	for _, a := range args {
		if items := parseSelection(a); len(items) > 0 {
			sets = append(sets, items)
		}
	}
	if batchFile != "" {
		var r io.Reader = cmd.InOrStdin()
		if batchFile != "-" {
			f, err := os.Open(batchFile)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		fromFile, err := readSelections(r)
		if err != nil {
			return err
		}
		sets = append(sets, fromFile...)
	}
	if len(sets) == 0 {
		return fmt.Errorf("no selections given")
	}

	api := newAPI(cfg)
	results := searchAll(ctx, api, sets, fetchOptions(cfg), batchConcurrency, cfg.PollInterval(), cfg.PollCeiling())

	history, err := openHistory(cfg)
	if err != nil {
		logging.Warn("history unavailable", "err", err)
	} else if history != nil {
		defer history.Close()
		saveBatch(history, results, fetchOptions(cfg), cfg.History.Keep)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderBatch(results, cfg.UI.Currency))
	return nil
}

// searchAll polls every selection with at most limit chains in flight.
// Each selection gets its own Poller so chains do not supersede each other.
// Results keep the order of sets.
func searchAll(ctx context.Context, api poll.Fetcher, sets [][]string, opts combo.FetchOptions, limit int, interval, ceiling time.Duration) []batchResult {
	results := make([]batchResult, len(sets))
	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, items := range sets {
		g.Go(func() error {
			p := poll.New(poll.Config{Fetcher: api, Interval: interval, Ceiling: ceiling})
			data, err := p.Fetch(ctx, items, opts)
			results[i] = batchResult{Items: items, Data: data, Err: err}
			if err != nil {
				logging.Debug("batch search failed", "items", strings.Join(items, ","), "err", err)
			}
			return nil
		})
	}
	g.Wait()
	return results
}

func saveBatch(st *store.Store, results []batchResult, opts combo.FetchOptions, keep int) {
	now := time.Now()
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if _, err := st.SaveResult(r.Items, opts, r.Data, now); err != nil {
			logging.Warn("failed to save result", "err", err)
		}
	}
	if keep > 0 {
		if _, err := st.Prune(keep); err != nil {
			logging.Warn("failed to prune history", "err", err)
		}
	}
}

// parseSelection splits a comma-separated selection.
func parseSelection(line string) []string {
	return parseItems(strings.Split(line, ","))
}

// readSelections reads one selection per line, skipping blanks and # comments.
func readSelections(r io.Reader) ([][]string, error) {
	var sets [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if items := parseSelection(line); len(items) > 0 {
			sets = append(sets, items)
		}
	}
	return sets, scanner.Err()
}

func renderBatch(results []batchResult, currency string) string {
	rows := make([][]string, len(results))
	for i, r := range results {
		row := []string{truncate(strings.Join(r.Items, ", "), 48), "", "", "", ""}
		switch {
		case r.Err != nil:
			row[4] = combo.UserMessage(r.Err)
		case len(r.Data) == 0:
			row[4] = "no combination"
		default:
			best := r.Data[0]
			row[1] = fmt.Sprintf("%.1f%%", best.CombinedCoverage)
			row[2] = combo.FormatPrice(best.CombinedMonthlyPriceCents, currency)
			row[3] = fmt.Sprintf("%d", len(best.Packages))
			row[4] = "ok"
		}
		rows[i] = row
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(ui.TableBorder).
		Headers("SELECTION", "COVERAGE", "MONTHLY", "PACKAGES", "STATUS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.TableHeader
			}
			return ui.TableCell
		}).
		Rows(rows...).
		String()
}
