// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// Messenger delivers replies to a Telegram chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	// SendKeyboard attaches a one-time reply keyboard, one button per label.
	SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error
	// SendRemoveKeyboard sends text and hides any reply keyboard.
	SendRemoveKeyboard(ctx context.Context, chatID int64, text string) error
}
