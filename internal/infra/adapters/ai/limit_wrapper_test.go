//go:build !integration

package ai_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"telegram-ai-relay/internal/domain"
	"telegram-ai-relay/internal/domain/ports/adapter"
	ai "telegram-ai-relay/internal/infra/adapters/ai"
)

type slowAI struct {
	inFlight int32
	peak     int32
}

func (s *slowAI) Provider() string { return "slow" }

func (s *slowAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.Completion, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	for {
		p := atomic.LoadInt32(&s.peak)
		if n <= p || atomic.CompareAndSwapInt32(&s.peak, p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	atomic.AddInt32(&s.inFlight, -1)
	return adapter.Completion{Text: "ok"}, nil
}

func TestLimitedAI_CapsConcurrency(t *testing.T) {
	t.Parallel()
	inner := &slowAI{}
	l := ai.NewLimitedAI(inner, 2)
	if l.Provider() != "slow" {
		t.Errorf("provider should pass through, got %q", l.Provider())
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Complete(context.Background(), adapter.CompletionRequest{})
		}()
	}
	wg.Wait()
	if p := atomic.LoadInt32(&inner.peak); p > 2 {
		t.Fatalf("expected at most 2 concurrent calls, saw %d", p)
	}
}

func TestLimitedAI_DisabledReturnsInner(t *testing.T) {
	inner := &slowAI{}
	if got := ai.NewLimitedAI(inner, 0); got != adapter.CompletionClient(inner) {
		t.Error("limit 0 should return the inner client")
	}
}

type blockingAI struct{ release chan struct{} }

func (b *blockingAI) Provider() string { return "blocking" }

func (b *blockingAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.Completion, error) {
	<-b.release
	return adapter.Completion{Text: "ok"}, nil
}

func TestLimitedAI_HonoursContextWhileWaiting(t *testing.T) {
	inner := &blockingAI{release: make(chan struct{})}
	l := ai.NewLimitedAI(inner, 1)

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = l.Complete(context.Background(), adapter.CompletionRequest{})
	}()
	<-started
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.Complete(ctx, adapter.CompletionRequest{})
	close(inner.release)

	if !errors.Is(err, context.DeadlineExceeded) || domain.CategoryOf(err) != domain.FailureUnknown {
		t.Errorf("expected an unknown deadline failure, got %v", err)
	}
}
