package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/adrior11/check24-best-combination-submission/internal/otel"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the JSONL event log written by the TUI",
	Args:  cobra.NoArgs,
	RunE:  runEvents,
}

// eventFilter selects events for display.
type eventFilter struct {
	kind  string // kind prefix, e.g. "poll"
	level string // minimum level
	comp  string
	chain string
}

var (
	eventsTail   int
	eventsFollow bool
	eventsJSON   bool
	eventsFilter eventFilter
)

func init() {
	f := eventsCmd.Flags()
	f.IntVar(&eventsTail, "tail", 50, "Number of recent lines to show")
	f.BoolVarP(&eventsFollow, "follow", "f", false, "Follow mode (like tail -f)")
	f.BoolVar(&eventsJSON, "json", false, "Output raw JSON lines")
	f.StringVar(&eventsFilter.kind, "kind", "", "Filter by event kind prefix (e.g. 'poll')")
	f.StringVar(&eventsFilter.level, "level", "", "Minimum level: debug, info, warn, error")
	f.StringVar(&eventsFilter.comp, "comp", "", "Filter by component name")
	f.StringVar(&eventsFilter.chain, "chain", "", "Filter by poll chain or mirror generation")
	rootCmd.AddCommand(eventsCmd)
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

func (f eventFilter) match(ev otel.Event) bool {
	if f.kind != "" && !strings.HasPrefix(string(ev.Kind), f.kind) {
		return false
	}
	if f.level != "" && levelRank(string(ev.Level)) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.chain != "" && ev.ChainID != f.chain {
		return false
	}
	return true
}

// formatEvent renders one event as a single line.
func formatEvent(ev otel.Event) string {
	ts := ev.Time.Local().Format("15:04:05.000")
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-9s] %-18s", ts, lvl, ev.Comp, ev.Kind)}
	if ev.ChainID != "" {
		parts = append(parts, "chain="+ev.ChainID)
	}
	if ev.Attempt > 0 {
		parts = append(parts, fmt.Sprintf("#%d", ev.Attempt))
	}
	if ev.Input != "" {
		parts = append(parts, fmt.Sprintf("in=%q", ev.Input))
	}
	if len(ev.Items) > 0 {
		parts = append(parts, fmt.Sprintf("items=[%s]", truncate(strings.Join(ev.Items, ", "), 60)))
	}
	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

func runEvents(cmd *cobra.Command, _ []string) error {
	logPath := eventLogPath()
	f, err := os.Open(logPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("event log not found at %s; run the TUI first to generate events", logPath)
		}
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	show := func(l parsedLine) {
		if eventsJSON {
			fmt.Fprintln(out, string(l.raw))
			return
		}
		fmt.Fprintln(out, formatEvent(l.ev))
	}

	for _, l := range readTailLines(f, eventsTail, eventsFilter.match) {
		show(l)
	}
	if !eventsFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return followLines(ctx, f, eventsFilter.match, show)
}

type parsedLine struct {
	ev  otel.Event
	raw []byte
}

// readTailLines reads r and returns the last n lines matching the filter.
func readTailLines(r io.Reader, n int, match func(otel.Event) bool) []parsedLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	ring := make([]parsedLine, 0, n)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev otel.Event
		if json.Unmarshal(raw, &ev) != nil || !match(ev) {
			continue
		}
		// Scanner reuses its buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}
	return ring
}

// followLines polls r for appended lines until ctx is done.
func followLines(ctx context.Context, r io.Reader, match func(otel.Event) bool, emit func(parsedLine)) error {
	reader := bufio.NewReader(r)
	var pending []byte
	for {
		chunk, err := reader.ReadBytes('\n')
		pending = append(pending, chunk...)
		if errors.Is(err, io.EOF) {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if err != nil {
			return err
		}
		line := trimLine(pending)
		pending = nil
		if len(line) == 0 {
			continue
		}
		var ev otel.Event
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if match(ev) {
			emit(parsedLine{ev: ev, raw: line})
		}
	}
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
