// Package suggest debounces raw keystrokes into suggestion requests.
package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/adrior11/check24-best-combination-submission/internal/clock"
	"github.com/adrior11/check24-best-combination-submission/internal/otel"
)

// DefaultDelay is the quiet period after the last keystroke before a
// suggestion is requested.
const DefaultDelay = 100 * time.Millisecond

// Suggester fetches a completion for input. An empty string means none.
type Suggester interface {
	GetSuggestion(ctx context.Context, input string) (string, error)
}

// Update is delivered whenever the suggestion for the current input changes
// or a fetch fails.
type Update struct {
	Input      string
	Suggestion string
	Err        error
}

// Config holds the Controller's collaborators. Only Suggester is required.
type Config struct {
	Suggester Suggester
	Clock     clock.Clock
	Delay     time.Duration
	Logger    *otel.Logger
	OnUpdate  func(Update)
}

// Controller owns the current raw input, the suggestion for it and the
// single pending debounce timer. Every SetInput bumps a generation; a timer
// or response from an older generation is ignored.
type Controller struct {
	api      Suggester
	clock    clock.Clock
	delay    time.Duration
	log      *otel.Logger
	onUpdate func(Update)

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	input      string
	suggestion string
	gen        uint64
	timer      clock.Timer
	closed     bool
}

// New creates a Controller.
func New(cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		api:      cfg.Suggester,
		clock:    cfg.Clock,
		delay:    cfg.Delay,
		log:      cfg.Logger,
		onUpdate: cfg.OnUpdate,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Input returns the current raw input.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// Suggestion returns the suggestion for the current input, or "".
func (c *Controller) Suggestion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suggestion
}

// SetInput records a keystroke. The previous suggestion is dropped, any
// pending timer is stopped, and a new fetch is scheduled unless the trimmed
// input is empty.
func (c *Controller) SetInput(raw string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.input = raw
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	hadSuggestion := c.suggestion != ""
	c.suggestion = ""

	if strings.TrimSpace(raw) == "" {
		c.mu.Unlock()
		if hadSuggestion {
			c.notify(Update{Input: raw})
		}
		return
	}

	c.timer = c.clock.AfterFunc(c.delay, func() { c.fire(gen, raw) })
	c.mu.Unlock()

	if hadSuggestion {
		c.notify(Update{Input: raw})
	}
	c.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestSchedule, Comp: "suggest", Input: raw})
}

// fire runs when the debounce timer of generation gen expires.
func (c *Controller) fire(gen uint64, input string) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()

	start := c.clock.Now()
	c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSuggestRequest, Comp: "suggest", Input: input})
	suggestion, err := c.api.GetSuggestion(c.ctx, input)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSuggestStale, Comp: "suggest", Input: input})
		return
	}
	if err != nil {
		c.suggestion = ""
	} else {
		c.suggestion = suggestion
	}
	update := Update{Input: input, Suggestion: c.suggestion, Err: err}
	c.mu.Unlock()

	if err != nil {
		c.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSuggestError, Comp: "suggest", Input: input, Err: err.Error()})
	} else {
		c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSuggestResult, Comp: "suggest", Input: input, Msg: suggestion, Dur: c.clock.Now().Sub(start)})
	}
	c.notify(update)
}

func (c *Controller) notify(u Update) {
	if c.onUpdate != nil {
		c.onUpdate(u)
	}
}

// Close stops the pending timer and cancels any in-flight request.
// Later calls to SetInput are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.cancel()
}
