package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-ai-relay/internal/domain/ports/adapter"
	"telegram-ai-relay/internal/infra/logging"
	"telegram-ai-relay/internal/infra/metrics"
)

// Compile-time check
var _ adapter.Messenger = (*Sender)(nil)

// botSender is the part of *tgbotapi.BotAPI the sender needs.
type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers texts with the configured parse mode. When Telegram rejects the
// markup the same text is re-sent without formatting.
type Sender struct {
	api       botSender
	parseMode string
	log       *zerolog.Logger
}

func NewSender(api botSender, parseMode string, logger *zerolog.Logger) *Sender {
	if logger == nil {
		logger = logging.Nop()
	}
	l := logger.With().Str("component", "TelegramSender").Logger()
	return &Sender{api: api, parseMode: parseMode, log: &l}
}

func (s *Sender) SendMessage(ctx context.Context, chatID int64, text string) error {
	return s.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendKeyboard sends text with a one-time, resized reply keyboard; one button per label.
func (s *Sender) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error {
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}

	markup := tgbotapi.NewReplyKeyboard(kbRows...)
	markup.OneTimeKeyboard = true
	markup.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	return s.send(ctx, msg)
}

func (s *Sender) SendRemoveKeyboard(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	return s.send(ctx, msg)
}

func (s *Sender) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	// Support early cancellation
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msg.ParseMode = s.parseMode
	_, err := s.api.Send(msg)
	if err == nil {
		metrics.IncMessageSent("ok")
		return nil
	}
	if msg.ParseMode == "" || !isEntityError(err) {
		metrics.IncMessageSent("error")
		return err
	}

	logging.With(ctx, s.log).Debug().Err(err).Msg("markup rejected, sending plain text")
	msg.ParseMode = ""
	if _, err := s.api.Send(msg); err != nil {
		metrics.IncMessageSent("error")
		return err
	}
	metrics.IncMessageSent("plain_fallback")
	return nil
}

func isEntityError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}
