package otel

import (
	"sync"
	"testing"
)

func TestPushAndSnapshot(t *testing.T) {
	r := NewRingBuffer(8)
	for i := 0; i < 5; i++ {
		r.Push(Event{Kind: KindPollAttempt, Attempt: i})
	}

	snap := r.Snapshot()
	if len(snap) != 5 {
		t.Fatalf("expected 5 events, got %d", len(snap))
	}
	for i, e := range snap {
		if e.Attempt != i {
			t.Errorf("snap[%d].Attempt=%d, want %d", i, e.Attempt, i)
		}
	}
}

func TestWrapAround(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 8; i++ {
		r.Push(Event{Kind: KindPollAttempt, Attempt: i})
	}

	snap := r.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events, got %d", len(snap))
	}
	for i, e := range snap {
		if want := i + 4; e.Attempt != want {
			t.Errorf("snap[%d].Attempt=%d, want %d", i, e.Attempt, want)
		}
	}
}

func TestLast(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 6; i++ {
		r.Push(Event{Kind: KindPollAttempt, Attempt: i})
	}

	last := r.Last(3)
	if len(last) != 3 {
		t.Fatalf("expected 3, got %d", len(last))
	}
	for i, e := range last {
		if want := i + 3; e.Attempt != want {
			t.Errorf("last[%d].Attempt=%d, want %d", i, e.Attempt, want)
		}
	}
	if got := r.Last(100); len(got) != 4 {
		t.Errorf("Last(100) returned %d events, want 4", len(got))
	}
	if got := r.Last(0); got != nil {
		t.Errorf("Last(0) = %v, want nil", got)
	}
}

func TestLastWithPrefix(t *testing.T) {
	r := NewRingBuffer(16)
	r.Push(Event{Kind: KindPollStart})
	r.Push(Event{Kind: KindMirrorSent})
	r.Push(Event{Kind: KindPollAttempt, Attempt: 1})
	r.Push(Event{Kind: KindSuggestRequest})
	r.Push(Event{Kind: KindPollReady})

	got := r.LastWithPrefix("poll.", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind != KindPollAttempt || got[1].Kind != KindPollReady {
		t.Errorf("unexpected order: %v, %v", got[0].Kind, got[1].Kind)
	}
}

func TestCounts(t *testing.T) {
	r := NewRingBuffer(8)
	r.Push(Event{Kind: KindMirrorSent})
	r.Push(Event{Kind: KindMirrorSent})
	r.Push(Event{Kind: KindMirrorError})

	counts := r.Counts()
	if counts[KindMirrorSent] != 2 || counts[KindMirrorError] != 1 {
		t.Errorf("Counts() = %v", counts)
	}
}

func TestPushCopiesSlicesAndMaps(t *testing.T) {
	r := NewRingBuffer(4)
	extra := map[string]any{"key": "original"}
	items := []string{"Werder Bremen"}
	r.Push(Event{Kind: KindSelectionAdd, Extra: extra, Items: items})

	extra["key"] = "mutated"
	items[0] = "mutated"

	snap := r.Snapshot()
	if snap[0].Extra["key"] != "original" {
		t.Errorf("extra was aliased: %v", snap[0].Extra["key"])
	}
	if snap[0].Items[0] != "Werder Bremen" {
		t.Errorf("items were aliased: %v", snap[0].Items)
	}
}

func TestConcurrentPushSnapshot(t *testing.T) {
	r := NewRingBuffer(32)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Push(Event{Kind: KindKeyPress})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Snapshot()
			}
		}()
	}
	wg.Wait()
	if r.Len() != 32 {
		t.Errorf("Len() = %d, want 32", r.Len())
	}
}

func TestDefaultRingSize(t *testing.T) {
	if r := NewRingBuffer(0); r.Cap() != DefaultRingSize {
		t.Errorf("Cap() = %d, want %d", r.Cap(), DefaultRingSize)
	}
}

func TestRingBufferWithLogger(t *testing.T) {
	r := NewRingBuffer(16)
	l := NewNullLogger()
	l.SetRingBuffer(r)

	l.Emit(Event{Kind: KindStartup, Msg: "hello"})
	l.Emit(Event{Kind: KindShutdown, Msg: "bye"})
	l.Close()

	last := r.Last(2)
	if len(last) != 2 || last[0].Kind != KindStartup || last[1].Kind != KindShutdown {
		t.Errorf("unexpected ring contents: %+v", last)
	}
}
