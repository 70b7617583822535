//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"telegram-ai-relay/internal/domain/model"
	"telegram-ai-relay/internal/domain/ports/adapter"
	"telegram-ai-relay/internal/domain/ports/repository"
)

// fakeCompletion answers with a fixed reply or error and records every request.
type fakeCompletion struct {
	mu       sync.Mutex
	reply    string
	usage    adapter.Usage
	err      error
	panicMsg string
	requests []adapter.CompletionRequest
}

func (f *fakeCompletion) Provider() string { return "fake" }

func (f *fakeCompletion) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.Completion, error) {
	f.mu.Lock()
	cp := req
	cp.Messages = append([]adapter.Message(nil), req.Messages...)
	f.requests = append(f.requests, cp)
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return adapter.Completion{}, f.err
	}
	return adapter.Completion{Text: f.reply, Usage: f.usage}, nil
}

func (f *fakeCompletion) calls() []adapter.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]adapter.CompletionRequest(nil), f.requests...)
}

type sentMessage struct {
	ChatID         int64
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
}

// fakeMessenger records outgoing messages in order.
type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (m *fakeMessenger) SendMessage(ctx context.Context, chatID int64, text string) error {
	return m.record(sentMessage{ChatID: chatID, Text: text})
}

func (m *fakeMessenger) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error {
	return m.record(sentMessage{ChatID: chatID, Text: text, Keyboard: rows})
}

func (m *fakeMessenger) SendRemoveKeyboard(ctx context.Context, chatID int64, text string) error {
	return m.record(sentMessage{ChatID: chatID, Text: text, RemoveKeyboard: true})
}

func (m *fakeMessenger) record(s sentMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, s)
	return nil
}

func (m *fakeMessenger) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

// keyPhrases renders "key" or "key|arg1|arg2" so tests can assert on keys.
type keyPhrases struct{}

func (keyPhrases) T(key string, args ...interface{}) string {
	if len(args) == 0 {
		return key
	}
	parts := []string{key}
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, "|")
}

// failingSessions wraps a repository and fails Append or Clear on demand.
type failingSessions struct {
	inner      repository.ChatSessionRepository
	appendErr  error
	clearErr   error
	clearPanic string
}

func (f *failingSessions) Get(ctx context.Context, userID int64) ([]model.ChatMessage, error) {
	return f.inner.Get(ctx, userID)
}

func (f *failingSessions) Append(ctx context.Context, userID int64, msg model.ChatMessage) ([]model.ChatMessage, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	return f.inner.Append(ctx, userID, msg)
}

func (f *failingSessions) Clear(ctx context.Context, userID int64) error {
	if f.clearPanic != "" {
		panic(f.clearPanic)
	}
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.inner.Clear(ctx, userID)
}
