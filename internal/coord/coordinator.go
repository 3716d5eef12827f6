// Package coord wires the suggestion, selection and poll controllers to the
// Bubble Tea program.
package coord

import (
	"context"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adrior11/check24-best-combination-submission/internal/clock"
	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/otel"
	"github.com/adrior11/check24-best-combination-submission/internal/poll"
	"github.com/adrior11/check24-best-combination-submission/internal/selection"
	"github.com/adrior11/check24-best-combination-submission/internal/store"
	"github.com/adrior11/check24-best-combination-submission/internal/suggest"
	"github.com/adrior11/check24-best-combination-submission/internal/ui"
)

// API is the backend surface the controllers need.
type API interface {
	suggest.Suggester
	selection.Mirror
	poll.Fetcher
}

// Sender delivers messages to the UI. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Config holds the Coordinator's collaborators. API is required; History
// may be nil to disable result history.
type Config struct {
	API          API
	History      *store.Store
	HistoryKeep  int
	Options      combo.FetchOptions
	Clock        clock.Clock
	SuggestDelay time.Duration
	PollInterval time.Duration
	PollCeiling  time.Duration
	Logger       *otel.Logger
}

// Coordinator owns the controllers of one UI session.
// Uses context cancellation as the ONLY stop mechanism for poll chains.
type Coordinator struct {
	suggest   *suggest.Controller
	selection *selection.Store
	poller    *poll.Poller
	history   *store.Store
	keep      int
	opts      combo.FetchOptions
	clock     clock.Clock
	log       *otel.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	sender Sender
}

// New creates a Coordinator. Nothing is sent to the UI until Start.
func New(cfg Config) *Coordinator {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Options.Limit == 0 {
		cfg.Options = combo.DefaultOptions()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		history: cfg.History,
		keep:    cfg.HistoryKeep,
		opts:    cfg.Options,
		clock:   cfg.Clock,
		log:     cfg.Logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	c.suggest = suggest.New(suggest.Config{
		Suggester: cfg.API,
		Clock:     cfg.Clock,
		Delay:     cfg.SuggestDelay,
		Logger:    cfg.Logger,
		OnUpdate:  c.onSuggestion,
	})
	c.selection = selection.New(selection.Config{
		Mirror:  cfg.API,
		Options: cfg.Options,
		Logger:  cfg.Logger,
		OnAck:   c.onAck,
	})
	c.poller = poll.New(poll.Config{
		Fetcher:  cfg.API,
		Clock:    cfg.Clock,
		Interval: cfg.PollInterval,
		Ceiling:  cfg.PollCeiling,
		Logger:   cfg.Logger,
	})
	return c
}

// Start attaches the program. When ctx is cancelled the Coordinator closes
// its controllers.
func (c *Coordinator) Start(ctx context.Context, s Sender) {
	c.mu.Lock()
	c.sender = s
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.ctx.Done():
		}
	}()
}

// Close stops pending suggestion timers, cancels in-flight requests and
// waits for mirror calls to return.
func (c *Coordinator) Close() {
	c.suggest.Close()
	c.poller.Cancel()
	c.selection.Close()
	c.cancel()
}

// Actions returns the operations the App triggers.
func (c *Coordinator) Actions() ui.Actions {
	return ui.Actions{
		SetInput: c.SetInput,
		Add:      c.AddCmd,
		Remove:   c.RemoveCmd,
		Search:   c.SearchCmd,
	}
}

// SetInput forwards a keystroke to the suggestion controller.
func (c *Coordinator) SetInput(raw string) {
	c.suggest.SetInput(raw)
}

// AddCmd adds the resolved value of raw to the selection. A change cancels
// the running search, whose result would describe the old selection.
func (c *Coordinator) AddCmd(raw, suggestion string) tea.Cmd {
	return func() tea.Msg {
		value, changed := c.selection.Add(raw, suggestion)
		msg := ui.SelectionChanged{Items: c.selection.Items(), Added: value, Changed: changed}
		if changed {
			msg.SearchCancelled = c.poller.Cancel()
		}
		return msg
	}
}

// RemoveCmd removes item from the selection. Like AddCmd it cancels the
// running search on change.
func (c *Coordinator) RemoveCmd(item string) tea.Cmd {
	return func() tea.Msg {
		changed := c.selection.Remove(item)
		msg := ui.SelectionChanged{Items: c.selection.Items(), Removed: item, Changed: changed}
		if changed {
			msg.SearchCancelled = c.poller.Cancel()
		}
		return msg
	}
}

// SearchCmd polls for the current selection. A newer search cancels this one.
func (c *Coordinator) SearchCmd() tea.Cmd {
	return func() tea.Msg {
		items := c.selection.Items()
		data, err := c.poller.Fetch(c.ctx, items, c.opts)
		if err == nil {
			c.saveHistory(items, data)
		}
		return ui.PollFinished{Items: items, Combinations: data, Err: err}
	}
}

// Selection exposes the store for callers outside the UI (tests, batch).
func (c *Coordinator) Selection() *selection.Store { return c.selection }

// Poller exposes the poller.
func (c *Coordinator) Poller() *poll.Poller { return c.poller }

func (c *Coordinator) saveHistory(items []string, data []combo.Combination) {
	if c.history == nil {
		return
	}
	run, err := c.history.SaveResult(items, c.opts, data, c.clock.Now())
	if err != nil {
		c.log.Error(otel.KindError, "coord", err)
		return
	}
	c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindHistorySaved, Comp: "coord", ChainID: run.ID, Items: items, Count: len(data)})
	if c.keep > 0 {
		if _, err := c.history.Prune(c.keep); err != nil {
			c.log.Error(otel.KindError, "coord", err)
		}
	}
}

// onSuggestion forwards completed suggestion fetches. Clears caused by a
// keystroke are already applied by the UI and are not forwarded.
func (c *Coordinator) onSuggestion(u suggest.Update) {
	if u.Suggestion == "" && u.Err == nil {
		return
	}
	if errors.Is(u.Err, context.Canceled) {
		return
	}
	c.send(ui.SuggestionUpdated{Input: u.Input, Suggestion: u.Suggestion, Err: u.Err})
}

func (c *Coordinator) onAck(a selection.Ack) {
	if errors.Is(a.Err, context.Canceled) {
		return
	}
	c.send(ui.MirrorAcked{Generation: a.Generation, Status: a.Status, Err: a.Err})
}

// send delivers msg if a program is attached. Callers are controller
// goroutines, never the UI goroutine.
func (c *Coordinator) send(msg tea.Msg) {
	c.mu.Lock()
	s := c.sender
	c.mu.Unlock()
	if s != nil {
		s.Send(msg)
	}
}
