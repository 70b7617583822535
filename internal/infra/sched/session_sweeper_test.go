//go:build !integration

package sched

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeEvictor struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int
	err     error
}

func (f *fakeEvictor) EvictIdle(ctx context.Context, before time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, before)
	return f.n, f.err
}

func (f *fakeEvictor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestSessionSweeper_Sweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ev := &fakeEvictor{n: 3}
	w := NewSessionSweeper(time.Minute, 30*time.Minute, ev, nil)
	w.now = func() time.Time { return now }

	if got := w.Sweep(context.Background()); got != 3 {
		t.Fatalf("expected 3 evicted, got %d", got)
	}
	if want := now.Add(-30 * time.Minute); !ev.cutoffs[0].Equal(want) {
		t.Errorf("cutoff = %v, want %v", ev.cutoffs[0], want)
	}

	ev.err = errors.New("store down")
	if got := w.Sweep(context.Background()); got != 0 {
		t.Errorf("errors should count as zero evictions, got %d", got)
	}
}

func TestSessionSweeper_RunStopsOnCancel(t *testing.T) {
	ev := &fakeEvictor{}
	w := NewSessionSweeper(5*time.Millisecond, time.Minute, ev, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(time.Second)
	for ev.calls() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper did not tick")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
