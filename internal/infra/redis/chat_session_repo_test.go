//go:build !integration

package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"telegram-ai-relay/internal/config"
	"telegram-ai-relay/internal/domain/model"
	"telegram-ai-relay/internal/infra/security"
)

func RedisTestConfig() config.RedisConfig {
	return config.RedisConfig{
		URL: "localhost:6379",
		DB:  1,
	}
}

func newTestRepo(t *testing.T, limit int) (*ChatSessionRepo, int64) {
	return newTestRepoWithCipher(t, limit, nil)
}

func newTestRepoWithCipher(t *testing.T, limit int, cipher PayloadCipher) (*ChatSessionRepo, int64) {
	t.Helper()
	ctx := context.Background()
	cfg := RedisTestConfig()
	cli, err := NewClient(ctx, &cfg)
	if err != nil {
		t.Skip("redis not available:", err)
	}
	t.Cleanup(func() { _ = cli.Close() })

	userID := time.Now().UnixNano()
	repo := NewChatSessionRepo(cli, limit, time.Minute, cipher)
	t.Cleanup(func() { _ = repo.Clear(context.Background(), userID) })
	return repo, userID
}

func TestRedisChatSessionRepo_AppendTrimsAndClears(t *testing.T) {
	repo, userID := newTestRepo(t, 4)
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		hist, err := repo.Append(ctx, userID, model.UserMessage(fmt.Sprintf("m%d", i)))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if len(hist) > 4 {
			t.Fatalf("history grew to %d", len(hist))
		}
	}

	hist, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(hist) != 4 || hist[0].Content != "m5" || hist[3].Content != "m8" {
		t.Fatalf("unexpected window: %+v", hist)
	}
	if hist[0].Role != model.RoleUser {
		t.Errorf("role not preserved: %q", hist[0].Role)
	}

	if err := repo.Clear(ctx, userID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if hist, _ := repo.Get(ctx, userID); len(hist) != 0 {
		t.Fatalf("expected empty history after clear, got %d", len(hist))
	}
}

func TestRedisChatSessionRepo_ConcurrentAppend(t *testing.T) {
	repo, userID := newTestRepo(t, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if hist, err := repo.Append(ctx, userID, model.UserMessage(fmt.Sprint(i))); err != nil || len(hist) > 10 {
				t.Errorf("append %d: len=%d err=%v", i, len(hist), err)
			}
		}(i)
	}
	wg.Wait()

	hist, _ := repo.Get(ctx, userID)
	if len(hist) != 10 {
		t.Errorf("expected 10 messages, got %d", len(hist))
	}
}

func TestRedisChatSessionRepo_EncryptedEntries(t *testing.T) {
	enc, err := security.NewEncryptionService("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	repo, userID := newTestRepoWithCipher(t, 10, enc)
	ctx := context.Background()

	if _, err := repo.Append(ctx, userID, model.UserMessage("secret question")); err != nil {
		t.Fatalf("append: %v", err)
	}
	raw, err := repo.client.cli.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil || len(raw) != 1 {
		t.Fatalf("unexpected raw list: %v %v", raw, err)
	}
	if strings.Contains(raw[0], "secret") {
		t.Errorf("entry stored in clear text: %q", raw[0])
	}
	hist, err := repo.Get(ctx, userID)
	if err != nil || len(hist) != 1 || hist[0].Content != "secret question" {
		t.Errorf("unexpected history: %+v %v", hist, err)
	}
}
