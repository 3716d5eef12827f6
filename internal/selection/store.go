// Package selection holds the ordered, de-duplicated list of chosen teams and
// tournaments and mirrors every change to the backend.
package selection

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/otel"
)

// mirrorTimeout bounds a single enqueue call.
const mirrorTimeout = 10 * time.Second

// Mirror pre-warms the backend with the current selection.
type Mirror interface {
	EnqueueBestCombination(ctx context.Context, items []string, opts combo.FetchOptions) (combo.Status, error)
}

// Ack is the outcome of one mirror call.
type Ack struct {
	Generation uint64
	Items      []string
	Status     combo.Status
	Err        error
}

// Config holds the Store's collaborators. Mirror may be nil, in which case
// mutations stay local.
type Config struct {
	Mirror  Mirror
	Options combo.FetchOptions
	Logger  *otel.Logger
	// OnAck is called for the acknowledgement of the newest generation only.
	OnAck func(Ack)
}

// Store is the user's current selection. It is safe for concurrent use.
type Store struct {
	mirror Mirror
	opts   combo.FetchOptions
	log    *otel.Logger
	onAck  func(Ack)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	items   []string
	gen     uint64
	last    Ack
	hasLast bool
}

// New creates an empty Store.
func New(cfg Config) *Store {
	if cfg.Options.Limit == 0 {
		cfg.Options = combo.DefaultOptions()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		mirror: cfg.Mirror,
		opts:   cfg.Options,
		log:    cfg.Logger,
		onAck:  cfg.OnAck,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Resolve returns the value Add would store for raw and suggestion: the
// suggestion when it extends the trimmed input, otherwise the trimmed input.
func Resolve(raw, suggestion string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if suggestion != "" && strings.HasPrefix(suggestion, trimmed) {
		return suggestion
	}
	return trimmed
}

// Add appends the resolved value of raw. It reports the stored value and
// whether the selection changed; blank input and duplicates are no-ops.
func (s *Store) Add(raw, suggestion string) (string, bool) {
	value := Resolve(raw, suggestion)
	if value == "" {
		return "", false
	}

	s.mu.Lock()
	if slices.Contains(s.items, value) {
		s.mu.Unlock()
		return value, false
	}
	s.items = append(s.items, value)
	gen, snapshot := s.bump()
	s.mu.Unlock()

	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSelectionAdd, Comp: "selection", Input: value, Items: snapshot})
	s.send(gen, snapshot)
	return value, true
}

// Remove deletes the exact item. It reports whether the item was present.
func (s *Store) Remove(item string) bool {
	s.mu.Lock()
	i := slices.Index(s.items, item)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	gen, snapshot := s.bump()
	s.mu.Unlock()

	s.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSelectionRemove, Comp: "selection", Input: item, Items: snapshot})
	s.send(gen, snapshot)
	return true
}

// Items returns a copy of the selection in insertion order.
func (s *Store) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Len returns the number of selected items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// LastMirror returns the acknowledgement of the newest mirror generation
// that has completed, if any.
func (s *Store) LastMirror() (Ack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// Wait blocks until every in-flight mirror call has returned.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight mirror calls and waits for them.
func (s *Store) Close() {
	s.cancel()
	s.wg.Wait()
}

// bump must be called with mu held.
func (s *Store) bump() (uint64, []string) {
	s.gen++
	return s.gen, slices.Clone(s.items)
}

func (s *Store) send(gen uint64, items []string) {
	if s.mirror == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runMirror(gen, items)
	}()
}

func (s *Store) runMirror(gen uint64, items []string) {
	chain := fmt.Sprintf("m%d", gen)
	s.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMirrorSent, Comp: "selection", ChainID: chain, Items: items, Count: len(items)})

	ctx, cancel := context.WithTimeout(s.ctx, mirrorTimeout)
	defer cancel()

	start := time.Now()
	status, err := s.mirror.EnqueueBestCombination(ctx, items, s.opts)
	if err == nil && status == combo.StatusError {
		err = combo.E(combo.KindMirror, "enqueue", fmt.Errorf("backend reported %s", status))
	}
	if err != nil {
		s.log.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindMirrorError, Comp: "selection", ChainID: chain, Items: items, Err: err.Error()})
	}
	ack := Ack{Generation: gen, Items: items, Status: status, Err: err}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMirrorStale, Comp: "selection", ChainID: chain})
		return
	}
	s.last = ack
	s.hasLast = true
	s.mu.Unlock()

	if err == nil {
		s.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMirrorAck, Comp: "selection", ChainID: chain, Msg: string(status), Dur: time.Since(start)})
	}
	if s.onAck != nil {
		s.onAck(ack)
	}
}
