// Package poll fetches the best combinations for a selection, re-asking the
// backend on a fixed interval while it reports PROCESSING.
package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adrior11/check24-best-combination-submission/internal/clock"
	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/otel"
)

const (
	DefaultInterval = 50 * time.Millisecond
	DefaultCeiling  = 500 * time.Millisecond
)

// State is the lifecycle of the most recent fetch.
type State int

const (
	Idle State = iota
	Requesting
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fetcher asks the backend for the combinations of a selection.
type Fetcher interface {
	GetBestCombination(ctx context.Context, items []string, opts combo.FetchOptions) (combo.Result, error)
}

// Config holds the Poller's collaborators. Only Fetcher is required.
type Config struct {
	Fetcher  Fetcher
	Clock    clock.Clock
	Interval time.Duration
	Ceiling  time.Duration
	Logger   *otel.Logger
}

// Poller runs at most one poll chain at a time. Starting a new chain cancels
// the previous one.
type Poller struct {
	api      Fetcher
	clock    clock.Clock
	interval time.Duration
	ceiling  time.Duration
	log      *otel.Logger

	mu     sync.Mutex
	state  State
	result []combo.Combination
	seq    uint64
	cancel context.CancelFunc
}

// New creates an idle Poller.
func New(cfg Config) *Poller {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = DefaultCeiling
	}
	return &Poller{
		api:      cfg.Fetcher,
		clock:    cfg.Clock,
		interval: cfg.Interval,
		ceiling:  cfg.Ceiling,
		log:      cfg.Logger,
	}
}

// State returns the state of the most recent chain.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Result returns a copy of the last stored combinations, ordered by index.
func (p *Poller) Result() []combo.Combination {
	p.mu.Lock()
	defer p.mu.Unlock()
	return combo.Clone(p.result)
}

// Fetch runs a poll chain for items and blocks until it ends. On success the
// sorted combinations are stored and returned. A failed chain leaves the
// stored result untouched.
func (p *Poller) Fetch(ctx context.Context, items []string, opts combo.FetchOptions) ([]combo.Combination, error) {
	if len(items) == 0 {
		p.reject()
		return nil, combo.E(combo.KindValidation, "fetch", combo.ErrNoItems)
	}
	if err := opts.Validate(); err != nil {
		p.reject()
		return nil, err
	}
	items = append([]string(nil), items...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq
	p.cancel = cancel
	p.state = Requesting
	p.mu.Unlock()

	chain := uuid.NewString()[:8]
	start := p.clock.Now()
	p.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPollStart, Comp: "poll", ChainID: chain, Items: items, Count: opts.Limit})

	data, attempts, err := p.run(ctx, chain, items, opts)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		// Superseded by a newer Fetch, a rejected Fetch or Cancel. Whatever
		// the chain got back describes a request nobody waits for.
		p.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPollCancel, Comp: "poll", ChainID: chain, Attempt: attempts})
		return nil, context.Canceled
	}
	p.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			p.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPollCancel, Comp: "poll", ChainID: chain, Attempt: attempts})
			p.state = Idle
			return nil, err
		}
		kind := otel.KindPollError
		if combo.KindOf(err) == combo.KindTimeout {
			kind = otel.KindPollTimeout
		}
		p.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: kind, Comp: "poll", ChainID: chain, Attempt: attempts, Err: err.Error(), Dur: p.clock.Now().Sub(start)})
		p.state = Failed
		return nil, err
	}

	sorted := combo.SortByIndex(data)
	p.result = sorted
	p.state = Ready
	p.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPollReady, Comp: "poll", ChainID: chain, Attempt: attempts, Count: len(sorted), Dur: p.clock.Now().Sub(start)})
	return combo.Clone(sorted), nil
}

// run is the request loop. It returns the READY data, or the error that ended
// the chain, along with the number of requests sent.
func (p *Poller) run(ctx context.Context, chain string, items []string, opts combo.FetchOptions) ([]combo.Combination, int, error) {
	var elapsed time.Duration
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		attempts++
		p.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPollAttempt, Comp: "poll", ChainID: chain, Attempt: attempts})

		res, err := p.api.GetBestCombination(ctx, items, opts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, attempts, ctxErr
			}
			if combo.KindOf(err) == "" {
				err = combo.E(combo.KindTransport, "fetch", err)
			}
			return nil, attempts, err
		}

		switch r := res.(type) {
		case combo.Ready:
			return r.Data, attempts, nil
		case combo.Processing:
			if elapsed >= p.ceiling {
				return nil, attempts, combo.E(combo.KindTimeout, "fetch", fmt.Errorf("still processing after %s", p.ceiling))
			}
			elapsed += p.interval
			if err := p.clock.Sleep(ctx, p.interval); err != nil {
				return nil, attempts, err
			}
		case combo.Failed:
			return nil, attempts, combo.E(combo.KindServer, "fetch", errors.New("backend reported ERROR"))
		default:
			return nil, attempts, combo.E(combo.KindServer, "fetch", fmt.Errorf("unexpected result %T", res))
		}
	}
}

// Cancel stops the running chain, if any, and reports whether one was running.
// The chain returns context.Canceled and stores nothing, even if a response
// was already on its way.
func (p *Poller) Cancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return false
	}
	p.cancel()
	p.cancel = nil
	p.seq++
	p.state = Idle
	return true
}

// reject supersedes any running chain with a request that failed validation.
// The older chain returns context.Canceled and stores nothing.
func (p *Poller) reject() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.seq++
	p.state = Failed
}
