package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"telegram-ai-relay/internal/domain"
	"telegram-ai-relay/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionClient = (*OpenRouterAdapter)(nil)

const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterConfig configures the OpenAI-compatible chat completions client.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string // e.g., https://openrouter.ai/api/v1
	Referer string // sent as HTTP-Referer
	Title   string // sent as X-Title
	Timeout time.Duration
}

// OpenRouterAdapter implements adapter.CompletionClient against any OpenAI-compatible
// gateway (OpenRouter by default). Retries are disabled.
type OpenRouterAdapter struct {
	client  openai.Client
	timeout time.Duration
}

func NewOpenRouterAdapter(cfg OpenRouterConfig) (*OpenRouterAdapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openrouter api key empty")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultOpenRouterBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(base),
		option.WithMaxRetries(0),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	return &OpenRouterAdapter{
		client:  openai.NewClient(opts...),
		timeout: cfg.Timeout,
	}, nil
}

func (o *OpenRouterAdapter) Provider() string { return "openrouter" }

func (o *OpenRouterAdapter) Complete(ctx context.Context, req adapter.CompletionRequest) (adapter.Completion, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	params.Temperature = openai.Float(req.Temperature)

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return adapter.Completion{}, o.wrapError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return adapter.Completion{}, domain.ErrNoChoices
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return adapter.Completion{}, domain.ErrNoContent
	}

	return adapter.Completion{
		Text: content,
		Usage: adapter.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// wrapError turns SDK failures into a *domain.CompletionError. API errors are rendered as
// "Error code: <status> - <message>" so the category never depends on the request URL.
func (o *OpenRouterAdapter) wrapError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		msg := apierr.Message
		if msg == "" {
			msg = http.StatusText(apierr.StatusCode)
		}
		return domain.NewCompletionError(apierr.StatusCode, fmt.Errorf("Error code: %d - %s", apierr.StatusCode, msg))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewCompletionError(0, fmt.Errorf("request timed out after %s: %w", o.timeout, context.DeadlineExceeded))
	}
	return domain.NewCompletionError(0, err)
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
