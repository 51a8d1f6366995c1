package telegram

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/adapter"
	"police-security-bot/internal/infra/i18n"
	"police-security-bot/internal/usecase"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local runs without
// a bot token. It logs what would have been sent.
type NoopBotAdapter struct {
	translator *i18n.Translator
	log        *zerolog.Logger
}

func NewNoopBotAdapter(translator *i18n.Translator, logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "noop_telegram").Logger()
	return &NoopBotAdapter{translator: translator, log: &l}
}

// SendMessage logs the message and simulates a small delay.
func (b *NoopBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	select {
	case <-time.After(50 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	b.log.Info().
		Int64("chat_id", params.ChatID).
		Int("reply_to", params.ReplyToMessageID).
		Str("parse_mode", params.ParseMode).
		Str("text", params.Text).
		Msg("send message")
	return nil
}

func (b *NoopBotAdapter) SendTyping(ctx context.Context, chatID int64) error {
	b.log.Debug().Int64("chat_id", chatID).Msg("typing")
	return nil
}

func (b *NoopBotAdapter) ReplyVerdict(ctx context.Context, chatID int64, replyTo int, flagged bool) error {
	return b.SendMessage(ctx, verdictReply(b.translator, chatID, replyTo, flagged))
}

func (b *NoopBotAdapter) SendAlert(ctx context.Context, adminChatID int64, alert model.Alert) error {
	return b.SendMessage(ctx, alertMessage(b.translator, adminChatID, alert))
}

// Replay feeds every non-blank line of r through ingest as a message from
// chatID, until r is exhausted or ctx is cancelled.
func (b *NoopBotAdapter) Replay(ctx context.Context, r io.Reader, chatID int64, ingest usecase.IngestUseCase) (int, error) {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		n++
		rep := ingest.Handle(ctx, model.IncomingMessage{
			ChatID:     chatID,
			MessageID:  n,
			SenderName: "stdin",
			Text:       text,
			ReceivedAt: time.Now(),
		})
		b.log.Info().
			Str("label", string(rep.Verdict.Label)).
			Float64("score", rep.Verdict.Score).
			Str("source", string(rep.Verdict.Source)).
			Bool("flagged", rep.Flagged).
			Msg("replayed message")
	}
	return n, sc.Err()
}
