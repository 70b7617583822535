// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-ai-relay/internal/domain"
	"telegram-ai-relay/internal/domain/model"
	"telegram-ai-relay/internal/domain/ports/adapter"
	"telegram-ai-relay/internal/domain/ports/repository"
	"telegram-ai-relay/internal/infra/logging"
	"telegram-ai-relay/internal/infra/metrics"
)

const (
	DefaultMaxTokens   = 2000
	DefaultTemperature = 0.7
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// Phrasebook resolves user-facing texts by key.
type Phrasebook interface {
	T(key string, args ...interface{}) string
}

// Inbound is one text message as received from Telegram.
type Inbound struct {
	UserID int64
	ChatID int64
	Text   string
}

// Outcome is the terminal state of one pipeline run.
type Outcome string

const (
	OutcomeRejected     Outcome = "rejected"
	OutcomeModelChanged Outcome = "model_changed"
	OutcomeAnswered     Outcome = "answered"
	OutcomeEmpty        Outcome = "empty"
	OutcomeFailed       Outcome = "failed"
)

type ChatUseCase interface {
	// HandleText runs the dispatch pipeline. The returned error is only about
	// delivery or storage; provider failures are turned into user notices.
	HandleText(ctx context.Context, in Inbound) (Outcome, error)
	ChangeModel(ctx context.Context, userID, chatID int64, modelID string) error
	ResetSession(ctx context.Context, userID int64, reason string) error
	History(ctx context.Context, userID int64) ([]model.ChatMessage, error)
	CurrentModel() string
	MatchModel(text string) (string, bool)
}

type chatUC struct {
	sessions  repository.ChatSessionRepository
	selector  *ModelSelector
	ai        adapter.CompletionClient
	formatter *ResponseFormatter
	messenger adapter.Messenger
	tr        Phrasebook
	locks     *userLocks
	log       *zerolog.Logger
	devMode   bool
}

func NewChatUseCase(
	sessions repository.ChatSessionRepository,
	selector *ModelSelector,
	ai adapter.CompletionClient,
	formatter *ResponseFormatter,
	messenger adapter.Messenger,
	tr Phrasebook,
	logger *zerolog.Logger,
	devMode bool,
) *chatUC {
	if logger == nil {
		logger = logging.Nop()
	}
	l := logger.With().Str("component", "ChatUseCase").Logger()
	return &chatUC{
		sessions:  sessions,
		selector:  selector,
		ai:        ai,
		formatter: formatter,
		messenger: messenger,
		tr:        tr,
		locks:     newUserLocks(),
		log:       &l,
		devMode:   devMode,
	}
}

func (c *chatUC) CurrentModel() string { return c.selector.Current() }

// MatchModel reports whether text names a catalog model exactly (ignoring outer spaces).
func (c *chatUC) MatchModel(text string) (string, bool) {
	id := strings.TrimSpace(text)
	if id == "" || !c.selector.Catalog().Contains(id) {
		return "", false
	}
	return id, true
}

func (c *chatUC) History(ctx context.Context, userID int64) ([]model.ChatMessage, error) {
	return c.sessions.Get(ctx, userID)
}

func (c *chatUC) HandleText(ctx context.Context, in Inbound) (out Outcome, err error) {
	log := logging.With(ctx, c.log)
	defer logging.TraceDuration(log, "ChatUC.HandleText")()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("pipeline panic")
			out = OutcomeFailed
			err = c.send(ctx, in.ChatID, c.tr.T("error_unknown", fmt.Sprint(r)))
		}
	}()

	if strings.TrimSpace(in.Text) == "" {
		metrics.IncInputRejected()
		log.Debug().Msg("rejected message without text")
		return OutcomeRejected, c.send(ctx, in.ChatID, c.tr.T("prompt_for_text"))
	}
	if id, ok := c.MatchModel(in.Text); ok {
		if err := c.ChangeModel(ctx, in.UserID, in.ChatID, id); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeModelChanged, nil
	}

	log.Info().Str("text", logging.Redact(in.Text, c.devMode)).Msg("user message")

	unlock := c.locks.Lock(in.UserID)
	defer unlock()

	return c.relay(ctx, log, in)
}

// relay runs append -> complete -> format -> deliver -> remember with the user lock held.
func (c *chatUC) relay(ctx context.Context, log *zerolog.Logger, in Inbound) (Outcome, error) {
	modelID := c.selector.Current()

	history, err := c.sessions.Append(ctx, in.UserID, model.UserMessage(in.Text))
	if err != nil {
		log.Error().Err(err).Msg("append user message failed")
		if sendErr := c.send(ctx, in.ChatID, c.tr.T("error_unknown", err.Error())); sendErr != nil {
			return OutcomeFailed, sendErr
		}
		return OutcomeFailed, fmt.Errorf("append user message: %w", err)
	}
	metrics.ObserveHistoryLength(len(history))

	req := adapter.CompletionRequest{
		Model:       modelID,
		Messages:    toAdapterMessages(history),
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}

	metrics.IncAIInFlight()
	start := time.Now()
	res, err := c.ai.Complete(ctx, req)
	latency := time.Since(start)
	metrics.DecAIInFlight()

	if err != nil {
		outcome := failureLabel(err)
		metrics.ObserveCompletion(c.ai.Provider(), modelID, outcome, latency, 0, 0, 0)
		log.Warn().Err(err).Str("model", modelID).Str("category", outcome).Msg("completion failed")
		return OutcomeFailed, c.send(ctx, in.ChatID, c.failureNotice(err, modelID))
	}

	reply, err := c.formatter.Format(res.Text)
	if errors.Is(err, domain.ErrEmptyCompletion) {
		metrics.ObserveCompletion(c.ai.Provider(), modelID, "empty", latency, res.Usage.PromptTokens, res.Usage.CompletionTokens, res.Usage.TotalTokens)
		log.Warn().Str("model", modelID).Msg("completion empty after cleaning")
		return OutcomeEmpty, c.send(ctx, in.ChatID, c.tr.T("empty_answer"))
	}
	if err != nil {
		return OutcomeFailed, c.send(ctx, in.ChatID, c.tr.T("error_unknown", err.Error()))
	}
	metrics.ObserveCompletion(c.ai.Provider(), modelID, "ok", latency, res.Usage.PromptTokens, res.Usage.CompletionTokens, res.Usage.TotalTokens)

	for i, chunk := range reply.Chunks {
		if err := c.send(ctx, in.ChatID, chunk); err != nil {
			return OutcomeFailed, fmt.Errorf("deliver chunk %d/%d: %w", i+1, len(reply.Chunks), err)
		}
	}

	if _, err := c.sessions.Append(ctx, in.UserID, model.AssistantMessage(reply.Text)); err != nil {
		return OutcomeAnswered, fmt.Errorf("append assistant message: %w", err)
	}

	log.Info().
		Str("model", modelID).
		Int("chunks", len(reply.Chunks)).
		Int("tokens", res.Usage.TotalTokens).
		Dur("latency", latency).
		Msg("answer delivered")
	return OutcomeAnswered, nil
}

// ChangeModel switches the process-wide model and resets the issuer's history only.
func (c *chatUC) ChangeModel(ctx context.Context, userID, chatID int64, modelID string) error {
	log := logging.With(ctx, c.log)
	if err := c.selector.SetCurrent(modelID); err != nil {
		log.Warn().Str("model", modelID).Msg("refused unknown model")
		if sendErr := c.send(ctx, chatID, c.tr.T("model_unavailable", modelID)); sendErr != nil {
			return sendErr
		}
		return err
	}
	metrics.IncModelChange(modelID)

	if err := c.ResetSession(ctx, userID, "model_change"); err != nil {
		log.Error().Err(err).Str("model", modelID).Msg("model changed but history reset failed")
		resetErr := fmt.Errorf("model changed to %s: %w", modelID, err)
		if sendErr := c.send(ctx, chatID, c.tr.T("error_unknown", err.Error())); sendErr != nil {
			return errors.Join(resetErr, sendErr)
		}
		return resetErr
	}

	log.Info().Str("model", modelID).Msg("model changed")
	return c.messenger.SendRemoveKeyboard(ctx, chatID, c.tr.T("model_changed", modelID))
}

func (c *chatUC) ResetSession(ctx context.Context, userID int64, reason string) error {
	unlock := c.locks.Lock(userID)
	defer unlock()
	if err := c.sessions.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	metrics.IncSessionReset(reason)
	return nil
}

func (c *chatUC) failureNotice(err error, modelID string) string {
	switch {
	case errors.Is(err, domain.ErrNoChoices):
		return c.tr.T("no_connection")
	case errors.Is(err, domain.ErrNoContent):
		return c.tr.T("no_answer")
	}

	var ce *domain.CompletionError
	if !errors.As(err, &ce) {
		return c.tr.T("error_unknown", err.Error())
	}
	switch ce.Category {
	case domain.FailureModelNotFound:
		return c.tr.T("error_model_not_found", modelID)
	case domain.FailureAuth:
		return c.tr.T("error_auth")
	case domain.FailureRateLimited:
		return c.tr.T("error_rate_limited")
	default:
		return c.tr.T("error_unknown", ce.Raw)
	}
}

func (c *chatUC) send(ctx context.Context, chatID int64, text string) error {
	if err := c.messenger.SendMessage(ctx, chatID, text); err != nil {
		logging.With(ctx, c.log).Error().Err(err).Msg("send failed")
		return err
	}
	return nil
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoChoices):
		return "no_choices"
	case errors.Is(err, domain.ErrNoContent):
		return "no_content"
	}
	return string(domain.CategoryOf(err))
}

func toAdapterMessages(history []model.ChatMessage) []adapter.Message {
	out := make([]adapter.Message, 0, len(history))
	for _, m := range history {
		out = append(out, adapter.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
