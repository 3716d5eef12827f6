package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/adrior11/check24-best-combination-submission/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing per-concern counts and recent
// events. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int, now time.Time) string {
	if ring == nil {
		return ""
	}

	counts := ring.Counts()
	recent := ring.Last(20)

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Counters"))
	lines = append(lines, fmt.Sprintf("  Suggest:    %d requests, %d results, %d stale, %d errors",
		counts[otel.KindSuggestRequest], counts[otel.KindSuggestResult], counts[otel.KindSuggestStale], counts[otel.KindSuggestError]))
	lines = append(lines, fmt.Sprintf("  Selection:  %d added, %d removed",
		counts[otel.KindSelectionAdd], counts[otel.KindSelectionRemove]))
	lines = append(lines, fmt.Sprintf("  Mirror:     %d sent, %d acked, %d stale, %d errors",
		counts[otel.KindMirrorSent], counts[otel.KindMirrorAck], counts[otel.KindMirrorStale], counts[otel.KindMirrorError]))
	lines = append(lines, fmt.Sprintf("  Poll:       %d started, %d attempts, %d ready, %d timeouts, %d errors, %d cancelled",
		counts[otel.KindPollStart], counts[otel.KindPollAttempt], counts[otel.KindPollReady],
		counts[otel.KindPollTimeout], counts[otel.KindPollError], counts[otel.KindPollCancel]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(now.Sub(e.Time)), string(e.Kind))
		if e.Input != "" {
			line += "  " + truncateRunes(e.Input, 24)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 32)
		}
		if e.Attempt > 0 {
			line += fmt.Sprintf("  #%d", e.Attempt)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		if e.ChainID != "" {
			line += "  chain:" + truncateRunes(e.ChainID, 8)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 96
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Negative durations from clock skew clamp to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// truncateRunes cuts s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("ctrl+g") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
