package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"telegram-ai-relay/internal/domain/model"
	"telegram-ai-relay/internal/domain/ports/repository"
)

var _ repository.ChatSessionRepository = (*ChatSessionRepo)(nil)

// ChatSessionRepo stores each user's history as a Redis list. Append, trim and read
// run in one MULTI/EXEC so concurrent writers never break the length bound.
// Keys expire after ttl without activity.
type ChatSessionRepo struct {
	client *Client
	limit  int
	ttl    time.Duration
	cipher PayloadCipher
}

// PayloadCipher seals list entries at rest (see security.EncryptionService).
type PayloadCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// NewChatSessionRepo stores entries as JSON; a non-nil cipher encrypts every entry.
func NewChatSessionRepo(client *Client, limit int, ttl time.Duration, cipher PayloadCipher) *ChatSessionRepo {
	if limit <= 0 {
		limit = model.DefaultHistoryLimit
	}
	return &ChatSessionRepo{client: client, limit: limit, ttl: ttl, cipher: cipher}
}

func historyKey(userID int64) string {
	return fmt.Sprintf("chat_history:%d", userID)
}

func (r *ChatSessionRepo) Get(ctx context.Context, userID int64) ([]model.ChatMessage, error) {
	raw, err := r.client.cli.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return r.decodeHistory(raw)
}

func (r *ChatSessionRepo) Append(ctx context.Context, userID int64, msg model.ChatMessage) ([]model.ChatMessage, error) {
	data, err := r.encode(msg)
	if err != nil {
		return nil, err
	}
	key := historyKey(userID)

	var hist *redis.StringSliceCmd
	_, err = r.client.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, data)
		p.LTrim(ctx, key, int64(-r.limit), -1)
		if r.ttl > 0 {
			p.Expire(ctx, key, r.ttl)
		}
		hist = p.LRange(ctx, key, 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	return r.decodeHistory(hist.Val())
}

func (r *ChatSessionRepo) Clear(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, historyKey(userID))
}

func (r *ChatSessionRepo) encode(msg model.ChatMessage) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	if r.cipher == nil {
		return string(data), nil
	}
	return r.cipher.Encrypt(string(data))
}

func (r *ChatSessionRepo) decodeHistory(raw []string) ([]model.ChatMessage, error) {
	out := make([]model.ChatMessage, 0, len(raw))
	for _, item := range raw {
		if r.cipher != nil {
			plain, err := r.cipher.Decrypt(item)
			if err != nil {
				return nil, fmt.Errorf("decrypt history entry: %w", err)
			}
			item = plain
		}
		var m model.ChatMessage
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}
