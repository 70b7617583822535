package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-ai-relay/internal/application"
	"telegram-ai-relay/internal/config"
	"telegram-ai-relay/internal/infra/logging"
	"telegram-ai-relay/internal/infra/metrics"
	"telegram-ai-relay/internal/infra/worker"
)

// NewBotAPI connects to Telegram with the bot token.
func NewBotAPI(cfg *config.BotConfig) (*tgbotapi.BotAPI, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, errors.New("bot token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return bot, nil
}

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
// Every update runs as its own task on the worker pool, queued behind earlier
// updates from the same sender.
type RealTelegramBotAdapter struct {
	bot    *tgbotapi.BotAPI
	cfg    *config.BotConfig
	facade *application.BotFacade
	sender *Sender
	pool   *worker.Pool
	log    *zerolog.Logger
}

func NewRealTelegramBotAdapter(bot *tgbotapi.BotAPI, cfg *config.BotConfig, facade *application.BotFacade, sender *Sender, pool *worker.Pool, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if bot == nil {
		return nil, errors.New("bot api is nil")
	}
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if sender == nil || pool == nil {
		return nil, errors.New("sender and worker pool are required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		bot:    bot,
		cfg:    cfg,
		facade: facade,
		sender: sender,
		pool:   pool,
		log:    &l,
	}, nil
}

// StartPolling blocks until ctx is cancelled or the update channel closes.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if err := r.SetMenuCommands(); err != nil {
		r.log.Warn().Err(err).Msg("failed to set menu commands")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = r.cfg.PollTimeout
	updates := r.bot.GetUpdatesChan(u)
	r.log.Info().Str("bot", r.bot.Self.UserName).Msg("polling started")

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			update := up
			err := r.pool.SubmitKeyed(ctx, updateKey(update), func(ctx context.Context) error {
				return r.handleUpdate(ctx, update)
			})
			if err != nil {
				metrics.IncUpdateDropped()
				r.log.Warn().Err(err).Int("update_id", update.UpdateID).Msg("update dropped")
			}
		}
	}
}

// updateKey orders updates per sender so one user's messages run in arrival order.
func updateKey(update tgbotapi.Update) int64 {
	if m := update.Message; m != nil {
		if m.From != nil {
			return m.From.ID
		}
		if m.Chat != nil {
			return m.Chat.ID
		}
	}
	return int64(update.UpdateID)
}

// SetMenuCommands publishes the command list shown by Telegram clients.
func (r *RealTelegramBotAdapter) SetMenuCommands() error {
	tr := r.facade.Tr
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: tr.T("cmd_start")},
		tgbotapi.BotCommand{Command: "help", Description: tr.T("cmd_help")},
		tgbotapi.BotCommand{Command: "models", Description: tr.T("cmd_models")},
		tgbotapi.BotCommand{Command: "change_model", Description: tr.T("cmd_change_model")},
		tgbotapi.BotCommand{Command: "clear", Description: tr.T("cmd_clear")},
	)
	_, err := r.bot.Request(cmds)
	return err
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return nil
	}

	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithTgID(ctx, message.From.ID)
	ctx = logging.WithChatID(ctx, message.Chat.ID)

	if message.IsCommand() {
		if handler, ok := r.commandRoutes()[message.Command()]; ok {
			metrics.IncTelegramCommand("/" + message.Command())
			return handler(ctx, message)
		}
	}

	// Free text, non-text messages and unknown commands all go through the chat pipeline.
	metrics.IncTelegramCommand("message")
	return r.facade.HandleText(ctx, message.From.ID, message.Chat.ID, message.Text)
}
