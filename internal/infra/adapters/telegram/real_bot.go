package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"police-security-bot/internal/config"
	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/adapter"
	"police-security-bot/internal/infra/i18n"
	"police-security-bot/internal/infra/logging"
	"police-security-bot/internal/infra/metrics"
	"police-security-bot/internal/infra/worker"
	"police-security-bot/internal/usecase"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// CommandLimiter throttles sensitive commands per chat.
type CommandLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RealTelegramBotAdapter polls updates, routes commands, and hands every other
// text message to the ingest use case.
type RealTelegramBotAdapter struct {
	bot        botAPI
	cfg        *config.BotConfig
	ingest     usecase.IngestUseCase
	registry   usecase.RegistryUseCase
	translator *i18n.Translator
	limiter    CommandLimiter
	log        *zerolog.Logger
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	translator *i18n.Translator,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newAdapter(bot, cfg, translator, logger), nil
}

func newAdapter(bot botAPI, cfg *config.BotConfig, translator *i18n.Translator, logger *zerolog.Logger) *RealTelegramBotAdapter {
	l := logger.With().Str("component", "telegram").Logger()
	return &RealTelegramBotAdapter{bot: bot, cfg: cfg, translator: translator, log: &l}
}

// Bind attaches the use cases. The ingest use case needs the adapter as its
// outbound port, so construction happens in two steps.
func (r *RealTelegramBotAdapter) Bind(ingest usecase.IngestUseCase, registry usecase.RegistryUseCase, limiter CommandLimiter) {
	r.ingest = ingest
	r.registry = registry
	r.limiter = limiter
}

// StartPolling blocks until ctx is cancelled. Updates are queued in arrival
// order and processed by cfg.Workers goroutines.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.ingest == nil || r.registry == nil {
		return errors.New("telegram adapter is not bound to use cases")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = r.cfg.PollTimeout
	updates := r.bot.GetUpdatesChan(u)

	pool := worker.NewPool(r.cfg.Workers, 100, r.log)
	pool.Start(ctx)
	defer pool.Stop()

	r.log.Info().Int("workers", r.cfg.Workers).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			traceCtx := logging.WithTraceID(ctx, ulid.Make().String())
			if err := pool.Submit(traceCtx, func(context.Context) error {
				return r.handleUpdate(traceCtx, up)
			}); err != nil {
				r.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("update dropped")
			}
		}
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}

	if msg.IsCommand() {
		cmd := msg.Command()
		metrics.IncTelegramCommand(cmd)
		if h, ok := r.commandRoutes()[cmd]; ok {
			return h(ctx, msg)
		}
		return r.reply(ctx, msg, r.translator.T("unknown_command"))
	}

	// photos, stickers and other media carry no text
	if msg.Text == "" {
		return nil
	}
	metrics.IncTelegramCommand("message")
	in := model.IncomingMessage{
		ChatID:     msg.Chat.ID,
		MessageID:  msg.MessageID,
		SenderName: model.SenderName(msg.From.UserName, msg.From.FirstName, msg.From.ID),
		Text:       msg.Text,
		ReceivedAt: msg.Time(),
	}
	rep := r.ingest.Handle(ctx, in)
	logging.With(ctx, r.log).Debug().
		Int64("chat_id", in.ChatID).
		Bool("persisted", rep.Persisted).
		Bool("flagged", rep.Flagged).
		Int("alerts_sent", rep.AlertsSent).
		Int("alerts_failed", rep.AlertsFailed).
		Msg("message handled")
	return nil
}

func (r *RealTelegramBotAdapter) reply(ctx context.Context, msg *tgbotapi.Message, text string) error {
	return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: msg.Chat.ID, Text: text})
}

// SendMessage implements the adapter port.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m := tgbotapi.NewMessage(params.ChatID, params.Text)
	m.ParseMode = params.ParseMode
	m.ReplyToMessageID = params.ReplyToMessageID
	_, err := r.bot.Send(m)
	return err
}

func (r *RealTelegramBotAdapter) SendTyping(ctx context.Context, chatID int64) error {
	_, err := r.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

func (r *RealTelegramBotAdapter) ReplyVerdict(ctx context.Context, chatID int64, replyTo int, flagged bool) error {
	return r.SendMessage(ctx, verdictReply(r.translator, chatID, replyTo, flagged))
}

func (r *RealTelegramBotAdapter) SendAlert(ctx context.Context, adminChatID int64, alert model.Alert) error {
	return r.SendMessage(ctx, alertMessage(r.translator, adminChatID, alert))
}

func verdictReply(t *i18n.Translator, chatID int64, replyTo int, flagged bool) adapter.SendMessageParams {
	p := adapter.SendMessageParams{ChatID: chatID, ReplyToMessageID: replyTo, Text: t.T("reply_safe")}
	if flagged {
		p.Text = t.T("reply_suspicious")
		p.ParseMode = adapter.ParseModeMarkdown
	}
	return p
}

// alertMessage renders the Markdown alert. User-controlled fields are escaped
// so a stray '*' or '_' cannot break the formatting.
func alertMessage(t *i18n.Translator, adminChatID int64, a model.Alert) adapter.SendMessageParams {
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s) }
	reasons := t.T("alert_no_reasons")
	if len(a.Reasons) > 0 {
		reasons = strings.Join(a.Reasons, ", ")
	}
	return adapter.SendMessageParams{
		ChatID:    adminChatID,
		ParseMode: adapter.ParseModeMarkdown,
		Text:      t.T("alert_message", esc(a.Sender), a.ChatID, esc(a.Text), a.Score, esc(reasons)),
	}
}
