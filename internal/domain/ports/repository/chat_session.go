package repository

import (
	"context"
	"time"

	"telegram-ai-relay/internal/domain/model"
)

// -----------------------------
// Chat Sessions
// -----------------------------

// ChatSessionRepository keeps the bounded per-user history. Every mutation is atomic
// per user and leaves at most the configured limit of messages.
type ChatSessionRepository interface {
	// Get returns the history oldest first; an unknown user has an empty history.
	Get(ctx context.Context, userID int64) ([]model.ChatMessage, error)
	// Append adds msg, trims from the front and returns the resulting history.
	Append(ctx context.Context, userID int64, msg model.ChatMessage) ([]model.ChatMessage, error)
	// Clear empties the user's history.
	Clear(ctx context.Context, userID int64) error
}

// IdleSessionEvictor is implemented by stores that can drop sessions nobody touched.
type IdleSessionEvictor interface {
	EvictIdle(ctx context.Context, before time.Time) (int, error)
}
