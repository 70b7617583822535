package ai

import (
	"context"

	"telegram-ai-relay/internal/domain"
	"telegram-ai-relay/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.CompletionClient = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.CompletionClient
	sem   chan struct{}
}

// NewLimitedAI caps the number of in-flight calls to inner. maxConcurrent <= 0 disables the cap.
func NewLimitedAI(inner adapter.CompletionClient, maxConcurrent int) adapter.CompletionClient {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Provider() string { return l.inner.Provider() }

func (l *limitedAI) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.Completion, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return adapter.Completion{}, domain.NewCompletionError(0, ctx.Err())
	}
	defer func() { <-l.sem }()
	return l.inner.Complete(ctx, req)
}
