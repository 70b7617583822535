package memory

import (
	"context"
	"sync"
	"time"

	"telegram-ai-relay/internal/domain/model"
	"telegram-ai-relay/internal/domain/ports/repository"
)

var (
	_ repository.ChatSessionRepository = (*ChatSessionRepo)(nil)
	_ repository.IdleSessionEvictor    = (*ChatSessionRepo)(nil)
)

const shardCount = 32

type shard struct {
	mu       sync.Mutex
	sessions map[int64]*model.ChatSession
}

// ChatSessionRepo keeps histories in process memory, split across lock shards so
// unrelated users never contend on one mutex. Nothing survives a restart.
type ChatSessionRepo struct {
	limit  int
	shards [shardCount]*shard
}

func NewChatSessionRepo(limit int) *ChatSessionRepo {
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}
	r := &ChatSessionRepo{limit: limit}
	for i := range r.shards {
		r.shards[i] = &shard{sessions: make(map[int64]*model.ChatSession)}
	}
	return r
}

func (r *ChatSessionRepo) shardFor(userID int64) *shard {
	k := uint64(userID) % shardCount
	return r.shards[k]
}

func (r *ChatSessionRepo) Get(ctx context.Context, userID int64) ([]model.ChatMessage, error) {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[userID]
	if !ok {
		s = model.NewChatSession(userID)
		sh.sessions[userID] = s
	}
	return s.Snapshot(), nil
}

func (r *ChatSessionRepo) Append(ctx context.Context, userID int64, msg model.ChatMessage) ([]model.ChatMessage, error) {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	s, ok := sh.sessions[userID]
	if !ok {
		s = model.NewChatSession(userID)
		sh.sessions[userID] = s
	}
	s.AddMessage(msg, r.limit)
	return s.Snapshot(), nil
}

func (r *ChatSessionRepo) Clear(ctx context.Context, userID int64) error {
	sh := r.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if s, ok := sh.sessions[userID]; ok {
		s.Reset()
		return nil
	}
	sh.sessions[userID] = model.NewChatSession(userID)
	return nil
}

// EvictIdle removes sessions last updated before the given time.
func (r *ChatSessionRepo) EvictIdle(ctx context.Context, before time.Time) (int, error) {
	n := 0
	for _, sh := range r.shards {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		sh.mu.Lock()
		for id, s := range sh.sessions {
			if s.UpdatedAt.Before(before) {
				delete(sh.sessions, id)
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n, nil
}

// Len reports how many users currently have a session.
func (r *ChatSessionRepo) Len() int {
	n := 0
	for _, sh := range r.shards {
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}
