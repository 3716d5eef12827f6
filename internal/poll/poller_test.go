package poll

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/adrior11/check24-best-combination-submission/internal/clock"
	"github.com/adrior11/check24-best-combination-submission/internal/combo"
)

// scriptFetcher answers with respond(n) for the n-th call, starting at 1.
type scriptFetcher struct {
	mu      sync.Mutex
	calls   int
	items   [][]string
	respond func(ctx context.Context, n int) (combo.Result, error)
}

func (f *scriptFetcher) GetBestCombination(ctx context.Context, items []string, opts combo.FetchOptions) (combo.Result, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.items = append(f.items, items)
	f.mu.Unlock()
	return f.respond(ctx, n)
}

func (f *scriptFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func combos(indices ...int) []combo.Combination {
	out := make([]combo.Combination, len(indices))
	for i, idx := range indices {
		out[i] = combo.Combination{Index: idx, CombinedCoverage: 100}
	}
	return out
}

func indices(cs []combo.Combination) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Index
	}
	return out
}

func newTestPoller(f Fetcher) (*Poller, *clock.Fake) {
	fc := clock.NewFake()
	return New(Config{Fetcher: f, Clock: fc}), fc
}

func TestEmptySelectionIsRejectedWithoutRequest(t *testing.T) {
	f := &scriptFetcher{respond: func(context.Context, int) (combo.Result, error) {
		return combo.Ready{}, nil
	}}
	p, _ := newTestPoller(f)

	_, err := p.Fetch(context.Background(), nil, combo.DefaultOptions())
	if !errors.Is(err, combo.ErrValidation) || !errors.Is(err, combo.ErrNoItems) {
		t.Fatalf("err = %v, want no-items validation error", err)
	}
	if f.count() != 0 {
		t.Errorf("transport called %d times", f.count())
	}
	if p.State() != Failed {
		t.Errorf("State() = %v", p.State())
	}
}

func TestInvalidLimitIsRejected(t *testing.T) {
	f := &scriptFetcher{}
	p, _ := newTestPoller(f)

	for _, limit := range []int{0, 6, -1} {
		_, err := p.Fetch(context.Background(), []string{"Bundesliga"}, combo.FetchOptions{Limit: limit})
		if !errors.Is(err, combo.ErrValidation) {
			t.Errorf("limit %d: err = %v", limit, err)
		}
	}
	if f.count() != 0 {
		t.Errorf("transport called %d times", f.count())
	}
}

func TestReadyAfterProcessing(t *testing.T) {
	f := &scriptFetcher{respond: func(_ context.Context, n int) (combo.Result, error) {
		if n < 3 {
			return combo.Processing{}, nil
		}
		return combo.Ready{Data: combos(2, 0, 1)}, nil
	}}
	p, fc := newTestPoller(f)

	got, err := p.Fetch(context.Background(), []string{"Bayern München", "Bundesliga"}, combo.DefaultOptions())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if want := []int{0, 1, 2}; !slices.Equal(indices(got), want) {
		t.Errorf("order = %v, want %v", indices(got), want)
	}
	if f.count() != 3 {
		t.Errorf("calls = %d, want 3", f.count())
	}
	if fc.Slept() != 2*DefaultInterval {
		t.Errorf("slept %v, want %v", fc.Slept(), 2*DefaultInterval)
	}
	if p.State() != Ready {
		t.Errorf("State() = %v", p.State())
	}
	if !slices.Equal(indices(p.Result()), []int{0, 1, 2}) {
		t.Errorf("Result() = %v", indices(p.Result()))
	}
	for i, items := range f.items {
		if len(items) != 2 {
			t.Errorf("call %d sent %v", i, items)
		}
	}
}

func TestTimeoutIsBounded(t *testing.T) {
	f := &scriptFetcher{respond: func(context.Context, int) (combo.Result, error) {
		return combo.Processing{}, nil
	}}
	p, fc := newTestPoller(f)

	_, err := p.Fetch(context.Background(), []string{"DFB Pokal"}, combo.DefaultOptions())
	if !errors.Is(err, combo.ErrTimeout) {
		t.Fatalf("err = %v, want timeout", err)
	}
	if f.count() != 11 {
		t.Errorf("calls = %d, want 11", f.count())
	}
	if fc.Slept() != DefaultCeiling {
		t.Errorf("slept %v, want %v", fc.Slept(), DefaultCeiling)
	}
	if p.State() != Failed {
		t.Errorf("State() = %v", p.State())
	}
}

func TestServerErrorIsDistinctFromTimeout(t *testing.T) {
	f := &scriptFetcher{respond: func(_ context.Context, n int) (combo.Result, error) {
		if n == 1 {
			return combo.Processing{}, nil
		}
		return combo.Failed{}, nil
	}}
	p, _ := newTestPoller(f)

	_, err := p.Fetch(context.Background(), []string{"Premier League"}, combo.DefaultOptions())
	if !errors.Is(err, combo.ErrServer) || errors.Is(err, combo.ErrTimeout) {
		t.Fatalf("err = %v, want server error", err)
	}
	if f.count() != 2 {
		t.Errorf("calls = %d, want 2", f.count())
	}
}

func TestTransportFailureIsNotRetried(t *testing.T) {
	f := &scriptFetcher{respond: func(context.Context, int) (combo.Result, error) {
		return nil, errors.New("connection refused")
	}}
	p, fc := newTestPoller(f)

	_, err := p.Fetch(context.Background(), []string{"La Liga"}, combo.DefaultOptions())
	if !errors.Is(err, combo.ErrTransport) {
		t.Fatalf("err = %v, want transport", err)
	}
	if f.count() != 1 || fc.Slept() != 0 {
		t.Errorf("calls = %d slept = %v; want one attempt, no wait", f.count(), fc.Slept())
	}
}

func TestFailureKeepsPreviousResult(t *testing.T) {
	fail := false
	f := &scriptFetcher{respond: func(context.Context, int) (combo.Result, error) {
		if fail {
			return combo.Failed{}, nil
		}
		return combo.Ready{Data: combos(0)}, nil
	}}
	p, _ := newTestPoller(f)

	if _, err := p.Fetch(context.Background(), []string{"Serie A"}, combo.DefaultOptions()); err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	fail = true
	if _, err := p.Fetch(context.Background(), []string{"Serie A", "Ligue 1"}, combo.DefaultOptions()); err == nil {
		t.Fatal("second Fetch should fail")
	}
	if got := p.Result(); len(got) != 1 || got[0].Index != 0 {
		t.Errorf("Result() = %+v, want previous result", got)
	}
}

func TestResultIsCopied(t *testing.T) {
	f := &scriptFetcher{respond: func(context.Context, int) (combo.Result, error) {
		return combo.Ready{Data: combos(0)}, nil
	}}
	p, _ := newTestPoller(f)

	got, _ := p.Fetch(context.Background(), []string{"Eredivisie"}, combo.DefaultOptions())
	got[0].Index = 42
	if p.Result()[0].Index != 0 {
		t.Error("caller mutation leaked into stored result")
	}
}

func TestNewFetchCancelsPrevious(t *testing.T) {
	entered := make(chan struct{})
	f := &scriptFetcher{respond: func(ctx context.Context, n int) (combo.Result, error) {
		if n == 1 {
			close(entered)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return combo.Ready{Data: combos(7)}, nil
	}}
	p := New(Config{Fetcher: f, Clock: clock.NewFake()})

	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Fetch(context.Background(), []string{"Bundesliga"}, combo.DefaultOptions())
		firstErr <- err
	}()
	<-entered

	got, err := p.Fetch(context.Background(), []string{"Bundesliga", "2. Bundesliga"}, combo.DefaultOptions())
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if len(got) != 1 || got[0].Index != 7 {
		t.Errorf("second result = %+v", got)
	}

	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("first chain err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first chain did not end")
	}
	if p.State() != Ready || p.Result()[0].Index != 7 {
		t.Errorf("state = %v result = %+v", p.State(), p.Result())
	}
}

func TestRejectedFetchSupersedesRunningChain(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		opts  combo.FetchOptions
	}{
		{"empty selection", nil, combo.DefaultOptions()},
		{"invalid limit", []string{"Bundesliga"}, combo.FetchOptions{Limit: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entered := make(chan struct{})
			release := make(chan struct{})
			f := &scriptFetcher{respond: func(ctx context.Context, n int) (combo.Result, error) {
				close(entered)
				<-release
				// Answer READY even though the chain was superseded.
				return combo.Ready{Data: combos(3)}, nil
			}}
			p := New(Config{Fetcher: f, Clock: clock.NewFake()})

			firstErr := make(chan error, 1)
			go func() {
				_, err := p.Fetch(context.Background(), []string{"Premier League"}, combo.DefaultOptions())
				firstErr <- err
			}()
			<-entered

			if _, err := p.Fetch(context.Background(), tt.items, tt.opts); !errors.Is(err, combo.ErrValidation) {
				t.Fatalf("second Fetch err = %v, want validation error", err)
			}
			close(release)

			select {
			case err := <-firstErr:
				if !errors.Is(err, context.Canceled) {
					t.Errorf("first chain err = %v, want context.Canceled", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("first chain did not end")
			}
			if p.State() != Failed {
				t.Errorf("state = %v, want failed", p.State())
			}
			if len(p.Result()) != 0 {
				t.Errorf("superseded chain stored %+v", p.Result())
			}
		})
	}
}

func TestCancelDiscardsLateResponse(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	f := &scriptFetcher{respond: func(context.Context, int) (combo.Result, error) {
		close(entered)
		<-release
		return combo.Ready{Data: combos(1)}, nil
	}}
	p, _ := newTestPoller(f)
	if p.Cancel() {
		t.Error("Cancel with no chain reported true")
	}

	done := make(chan error, 1)
	go func() {
		_, err := p.Fetch(context.Background(), []string{"Bayern München"}, combo.DefaultOptions())
		done <- err
	}()
	<-entered

	if !p.Cancel() {
		t.Error("Cancel during a chain reported false")
	}
	close(release)
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if p.State() != Idle || len(p.Result()) != 0 {
		t.Errorf("state = %v result = %+v", p.State(), p.Result())
	}
	if p.Cancel() {
		t.Error("second Cancel reported true")
	}
}

func TestCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &scriptFetcher{respond: func(_ context.Context, n int) (combo.Result, error) {
		if n == 2 {
			cancel()
		}
		return combo.Processing{}, nil
	}}
	p, _ := newTestPoller(f)

	_, err := p.Fetch(ctx, []string{"MLS"}, combo.DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if f.count() != 2 {
		t.Errorf("calls = %d, want 2", f.count())
	}
	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Requesting: "requesting", Ready: "ready", Failed: "failed"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", int(s), s.String())
		}
	}
}
