package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/adrior11/check24-best-combination-submission/internal/otel"
)

const sampleLog = `{"t":"2024-06-14T21:00:00Z","level":"info","kind":"poll.start","comp":"poll","chain":"a1b2c3d4","items":["Bundesliga"]}
{"t":"2024-06-14T21:00:00.05Z","level":"debug","kind":"poll.attempt","comp":"poll","chain":"a1b2c3d4","attempt":2}
not json
{"t":"2024-06-14T21:00:00.5Z","level":"warn","kind":"poll.timeout","comp":"poll","chain":"a1b2c3d4","err":"timeout exceeded"}
{"t":"2024-06-14T21:00:01Z","level":"info","kind":"suggest.result","comp":"suggest","input":"Bor","msg":"Borussia Dortmund","dur_ms":12.5}
`

func TestReadTailLines(t *testing.T) {
	all := func(otel.Event) bool { return true }

	lines := readTailLines(strings.NewReader(sampleLog), 10, all)
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (malformed line skipped)", len(lines))
	}

	lines = readTailLines(strings.NewReader(sampleLog), 2, all)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ev.Kind != otel.KindPollTimeout || lines[1].ev.Kind != otel.KindSuggestResult {
		t.Errorf("tail kept wrong lines: %s, %s", lines[0].ev.Kind, lines[1].ev.Kind)
	}

	if got := readTailLines(strings.NewReader(sampleLog), 0, all); len(got) != 0 {
		t.Errorf("tail 0 returned %d lines", len(got))
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter eventFilter
		want   int
	}{
		{"none", eventFilter{}, 4},
		{"kind prefix", eventFilter{kind: "poll"}, 3},
		{"min level", eventFilter{level: "warn"}, 1},
		{"component", eventFilter{comp: "suggest"}, 1},
		{"chain", eventFilter{chain: "a1b2c3d4"}, 3},
		{"combined", eventFilter{kind: "poll", level: "info"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readTailLines(strings.NewReader(sampleLog), 50, tt.filter.match)
			if len(got) != tt.want {
				t.Errorf("matched %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	ev := otel.Event{
		Time:    time.Date(2024, 6, 14, 21, 0, 0, 0, time.UTC),
		Level:   otel.LevelWarn,
		Kind:    otel.KindPollAttempt,
		Comp:    "poll",
		ChainID: "a1b2c3d4",
		Attempt: 3,
		Items:   []string{"Bundesliga", "DFB Pokal"},
		Err:     "boom",
		DurMs:   0.25,
	}
	got := formatEvent(ev)
	for _, want := range []string{"WARN", "poll.attempt", "chain=a1b2c3d4", "#3", "items=[Bundesliga, DFB Pokal]", "(0.25ms)", "err=boom"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent missing %q: %s", want, got)
		}
	}
}

func TestFollowLinesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var got []parsedLine
	done := make(chan error, 1)
	go func() {
		done <- followLines(ctx, strings.NewReader(sampleLog), func(otel.Event) bool { return true }, func(l parsedLine) {
			got = append(got, l)
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("followLines: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("followLines did not stop")
	}
	if len(got) != 4 {
		t.Errorf("followed %d lines, want 4", len(got))
	}
}

func TestDurPrecision(t *testing.T) {
	tests := []struct {
		ms   float64
		want int
	}{
		{250, 0},
		{12.5, 1},
		{0.25, 2},
	}
	for _, tt := range tests {
		if got := durPrecision(tt.ms); got != tt.want {
			t.Errorf("durPrecision(%v) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}
