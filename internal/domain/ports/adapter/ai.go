package adapter

import "context"

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything a provider needs for one non-streaming call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Completion is the raw assistant text as returned by the provider.
type Completion struct {
	Text  string
	Usage Usage
}

// CompletionClient is the port for the remote LLM completion endpoint.
//
// Failed calls return a *domain.CompletionError. A response without choices returns
// domain.ErrNoChoices and a choice without text returns domain.ErrNoContent.
// Implementations never retry.
type CompletionClient interface {
	Provider() string
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}
