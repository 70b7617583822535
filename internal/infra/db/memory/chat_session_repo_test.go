//go:build !integration

package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"telegram-ai-relay/internal/domain/model"
)

func TestChatSessionRepo_AppendKeepsNewest(t *testing.T) {
	ctx := context.Background()
	repo := NewChatSessionRepo(10)

	for i := 0; i < 30; i++ {
		hist, err := repo.Append(ctx, 1, model.UserMessage(fmt.Sprintf("m%d", i)))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if len(hist) > 10 {
			t.Fatalf("history grew to %d", len(hist))
		}
		if hist[len(hist)-1].Content != fmt.Sprintf("m%d", i) {
			t.Fatalf("last message should be the one just appended, got %q", hist[len(hist)-1].Content)
		}
	}

	hist, _ := repo.Get(ctx, 1)
	if hist[0].Content != "m20" || hist[9].Content != "m29" {
		t.Errorf("unexpected window: first=%q last=%q", hist[0].Content, hist[9].Content)
	}
}

func TestChatSessionRepo_GetCreatesEmpty(t *testing.T) {
	repo := NewChatSessionRepo(0)
	hist, err := repo.Get(context.Background(), 99)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(hist) != 0 {
		t.Fatalf("expected empty history, got %d", len(hist))
	}
	if repo.Len() != 1 {
		t.Errorf("expected lazily created session, got %d sessions", repo.Len())
	}
}

func TestChatSessionRepo_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewChatSessionRepo(10)
	_, _ = repo.Append(ctx, 5, model.UserMessage("a"))
	_, _ = repo.Append(ctx, 5, model.AssistantMessage("b"))

	for i := 0; i < 2; i++ {
		if err := repo.Clear(ctx, 5); err != nil {
			t.Fatalf("clear: %v", err)
		}
		hist, _ := repo.Get(ctx, 5)
		if len(hist) != 0 {
			t.Fatalf("clear #%d left %d messages", i+1, len(hist))
		}
	}
	if err := repo.Clear(ctx, 6); err != nil {
		t.Fatalf("clearing an unknown user should succeed: %v", err)
	}
}

func TestChatSessionRepo_SnapshotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo := NewChatSessionRepo(10)
	hist, _ := repo.Append(ctx, 1, model.UserMessage("a"))
	hist[0].Content = "mutated"
	again, _ := repo.Get(ctx, 1)
	if again[0].Content != "a" {
		t.Errorf("caller mutation leaked into the store: %q", again[0].Content)
	}
}

func TestChatSessionRepo_ConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	repo := NewChatSessionRepo(10)

	const users, perUser = 8, 50
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		for i := 0; i < perUser; i++ {
			wg.Add(1)
			go func(u, i int) {
				defer wg.Done()
				hist, err := repo.Append(ctx, int64(u), model.UserMessage(fmt.Sprint(i)))
				if err != nil || len(hist) > 10 {
					t.Errorf("user %d: len=%d err=%v", u, len(hist), err)
				}
			}(u, i)
		}
	}
	wg.Wait()

	for u := 0; u < users; u++ {
		hist, _ := repo.Get(ctx, int64(u))
		if len(hist) != 10 {
			t.Errorf("user %d: expected full window of 10, got %d", u, len(hist))
		}
	}
}

func TestChatSessionRepo_EvictIdle(t *testing.T) {
	ctx := context.Background()
	repo := NewChatSessionRepo(10)
	_, _ = repo.Append(ctx, 1, model.UserMessage("old"))

	cutoff := time.Now().Add(time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, _ = repo.Append(ctx, 2, model.UserMessage("fresh"))

	n, err := repo.EvictIdle(ctx, cutoff)
	if err != nil {
		t.Fatalf("evict: %v", err)
	}
	if n != 1 || repo.Len() != 1 {
		t.Fatalf("expected 1 evicted and 1 left, got evicted=%d left=%d", n, repo.Len())
	}
	if hist, _ := repo.Get(ctx, 2); len(hist) != 1 {
		t.Errorf("fresh session lost: %+v", hist)
	}
}
