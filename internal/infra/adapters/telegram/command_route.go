package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-ai-relay/internal/infra/logging"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":        r.handleStartCommand,
		"help":         r.handleHelpCommand,
		"models":       r.handleModelsCommand,
		"change_model": r.handleChangeModelCommand,
		"clear":        r.handleClearCommand,
	}
}

// handleStartCommand resets the caller's history and greets them.
func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleStart(ctx, message.From.ID)
	return r.reply(ctx, message, text, err)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleHelp(ctx)
	return r.reply(ctx, message, text, err)
}

func (r *RealTelegramBotAdapter) handleModelsCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleModels(ctx)
	return r.reply(ctx, message, text, err)
}

// handleChangeModelCommand shows the featured models as a reply keyboard.
// Pressing a button sends the model id as plain text, which the pipeline picks up.
func (r *RealTelegramBotAdapter) handleChangeModelCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, rows, err := r.facade.HandleChangeModel(ctx)
	if err != nil {
		return r.reply(ctx, message, "", err)
	}
	return r.sender.SendKeyboard(ctx, message.Chat.ID, text, rows)
}

func (r *RealTelegramBotAdapter) handleClearCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleClear(ctx, message.From.ID)
	return r.reply(ctx, message, text, err)
}

func (r *RealTelegramBotAdapter) reply(ctx context.Context, message *tgbotapi.Message, text string, err error) error {
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Str("command", message.Command()).Msg("command failed")
		text = r.facade.Tr.T("error_unknown", err.Error())
	}
	return r.sender.SendMessage(ctx, message.Chat.ID, text)
}
