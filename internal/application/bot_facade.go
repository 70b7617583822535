package application

import (
	"context"
	"fmt"
	"strings"

	"telegram-ai-relay/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands.
// Command handlers return strings so the Telegram adapter just forwards them to the chat;
// free text goes through the chat pipeline, which delivers its own replies.
type BotFacade struct {
	ChatUC       ChatUseCaseIface
	Catalog      CatalogIface
	Tr           usecase.Phrasebook
	HistoryLimit int
}

func NewBotFacade(chatUC ChatUseCaseIface, catalog CatalogIface, tr usecase.Phrasebook, historyLimit int) *BotFacade {
	return &BotFacade{
		ChatUC:       chatUC,
		Catalog:      catalog,
		Tr:           tr,
		HistoryLimit: historyLimit,
	}
}

// HandleStart resets the caller's history and returns the welcome text.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64) (string, error) {
	if err := b.ChatUC.ResetSession(ctx, tgID, "start"); err != nil {
		return "", fmt.Errorf("reset session: %w", err)
	}
	return b.Tr.T("welcome"), nil
}

func (b *BotFacade) HandleHelp(ctx context.Context) (string, error) {
	return b.Tr.T("help", b.HistoryLimit), nil
}

// HandleModels renders the catalog grouped by vendor plus the active model.
func (b *BotFacade) HandleModels(ctx context.Context) (string, error) {
	sb := strings.Builder{}
	sb.WriteString(b.Tr.T("models_header"))
	sb.WriteString("\n")
	for _, vendor := range b.Catalog.Vendors() {
		sb.WriteString(fmt.Sprintf("\n**%s:**\n", vendor))
		for _, e := range b.Catalog.ByVendor(vendor) {
			if e.Description != "" {
				sb.WriteString(fmt.Sprintf("- `%s` - %s\n", e.ID, e.Description))
			} else {
				sb.WriteString(fmt.Sprintf("- `%s`\n", e.ID))
			}
		}
	}
	sb.WriteString("\n")
	sb.WriteString(b.Tr.T("models_current", b.ChatUC.CurrentModel()))
	sb.WriteString("\n\n")
	sb.WriteString(b.Tr.T("models_footer"))
	return sb.String(), nil
}

// HandleChangeModel returns the prompt and one keyboard row per featured model.
func (b *BotFacade) HandleChangeModel(ctx context.Context) (string, [][]string, error) {
	featured := b.Catalog.Featured()
	rows := make([][]string, 0, len(featured))
	for _, e := range featured {
		rows = append(rows, []string{e.ID})
	}
	return b.Tr.T("change_model_prompt"), rows, nil
}

func (b *BotFacade) HandleClear(ctx context.Context, tgID int64) (string, error) {
	if err := b.ChatUC.ResetSession(ctx, tgID, "clear"); err != nil {
		return "", fmt.Errorf("reset session: %w", err)
	}
	return b.Tr.T("chat_cleared"), nil
}

// HandleText forwards free text (including model ids and unknown commands) to the pipeline.
func (b *BotFacade) HandleText(ctx context.Context, tgID, chatID int64, text string) error {
	_, err := b.ChatUC.HandleText(ctx, usecase.Inbound{UserID: tgID, ChatID: chatID, Text: text})
	return err
}
