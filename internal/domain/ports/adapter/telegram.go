// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"police-security-bot/internal/domain/model"
)

const (
	ParseModeNone     = ""
	ParseModeMarkdown = "Markdown"
)

type SendMessageParams struct {
	ChatID           int64
	Text             string
	ParseMode        string
	ReplyToMessageID int
}

// TelegramBotAdapter is the outbound side of the bot. Rendering of the
// moderation texts lives in the adapter so user content is escaped for the
// parse mode that carries it.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, params SendMessageParams) error
	SendTyping(ctx context.Context, chatID int64) error
	// ReplyVerdict answers the sender: a warning when flagged, an
	// acknowledgement otherwise.
	ReplyVerdict(ctx context.Context, chatID int64, replyTo int, flagged bool) error
	SendAlert(ctx context.Context, adminChatID int64, alert model.Alert) error
}
