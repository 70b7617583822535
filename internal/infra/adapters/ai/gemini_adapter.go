// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"telegram-ai-relay/internal/domain"
	"telegram-ai-relay/internal/domain/ports/adapter"
)

var _ adapter.CompletionClient = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL string, timeout time.Duration) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, timeout: timeout}, nil
}

func (g *GeminiAdapter) Provider() string { return "gemini" }

func (g *GeminiAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.Completion, error) {
	if len(req.Messages) == 0 {
		return adapter.Completion{}, domain.NewCompletionError(0, errors.New("gemini: no messages"))
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temp := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
		Temperature:     &temp,
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, toGenAIHistory(req.Messages), cfg)
	if err != nil {
		return adapter.Completion{}, g.wrapError(ctx, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return adapter.Completion{}, domain.ErrNoChoices
	}

	text := candidateText(resp.Candidates[0])
	if text == "" {
		return adapter.Completion{}, domain.ErrNoContent
	}

	u := adapter.Usage{}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return adapter.Completion{Text: text, Usage: u}, nil
}

// --- internal ---

// wrapError keeps the HTTP status for classification. Raw text is built from the status
// and message only, so the request URL never reaches the category rules.
func (g *GeminiAdapter) wrapError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewCompletionError(0, fmt.Errorf("request timed out after %s: %w", g.timeout, context.DeadlineExceeded))
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewCompletionError(apiErr.Code, fmt.Errorf("Error code: %d - %s", apiErr.Code, apiErr.Message))
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return domain.NewCompletionError(apiErrPtr.Code, fmt.Errorf("Error code: %d - %s", apiErrPtr.Code, apiErrPtr.Message))
	}
	return domain.NewCompletionError(0, err)
}

func candidateText(c *genai.Candidate) string {
	if c == nil || c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		switch strings.ToLower(m.Role) {
		case "assistant", "model":
			role = genai.RoleModel
		case "system":
			// No system role in Gemini history; sent as a user turn.
			role = genai.RoleUser
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
