package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/coverage"
	"github.com/adrior11/check24-best-combination-submission/internal/store"
	"github.com/adrior11/check24-best-combination-submission/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List saved results, or show one",
	Long: "Without arguments, lists the most recent READY results saved by the TUI and " +
		"the search command. With a run id (or a unique prefix of one), prints its matrices.",
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var (
	historyLimit int
	historyPrune int
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to list")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "Keep only the newest N runs, then exit")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if st == nil {
		return errors.New("history is disabled")
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if historyPrune > 0 {
		n, err := st.Prune(historyPrune)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Pruned %d runs.\n", n)
		return nil
	}

	if len(args) == 1 {
		run, err := findRun(st, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s  %s  [%s]\n\n", run.ID, run.FetchedAt.Local().Format("2006-01-02 15:04"), strings.Join(run.Items, ", "))
		fmt.Fprintln(out, ui.RenderResults(run.Combinations, coverage.NewMemo(run.Combinations), cfg.UI.Currency))
		return nil
	}

	runs, err := st.ListHistory(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No saved results.")
		return nil
	}
	fmt.Fprintln(out, renderRuns(runs, cfg.UI.Currency))
	return nil
}

// findRun resolves id as a full run id or a unique prefix of one.
func findRun(st *store.Store, id string) (store.Run, error) {
	full, err := st.ResolveID(id)
	if err != nil {
		return store.Run{}, fmt.Errorf("run %q: %w", id, err)
	}
	return st.GetRun(full)
}

// renderRuns formats the history listing.
func renderRuns(runs []store.Run, currency string) string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID[:8],
			r.FetchedAt.Local().Format("2006-01-02 15:04"),
			truncate(strings.Join(r.Items, ", "), 40),
			strconv.Itoa(r.Limit),
			fmt.Sprintf("%.1f%%", r.BestCoverage),
			combo.FormatPrice(r.BestPriceCents, currency),
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(ui.TableBorder).
		Headers("ID", "FETCHED", "ITEMS", "LIMIT", "COVERAGE", "PRICE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.TableHeader
			}
			return ui.TableCell
		}).
		Rows(rows...).
		String()
}
