package usecase

import (
	"context"
	"time"

	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/adapter"
	"police-security-bot/internal/domain/ports/repository"
	"police-security-bot/internal/infra/logging"
	"police-security-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ IngestUseCase = (*ingestUC)(nil)

// IngestReport says what happened to one message. Handle never fails, so
// the report is the only way for callers and tests to observe the steps.
type IngestReport struct {
	Verdict      model.Verdict
	Persisted    bool
	Replied      bool
	Flagged      bool
	AlertsSent   int
	AlertsFailed int
}

// IngestUseCase moderates one incoming text message end to end.
type IngestUseCase interface {
	Handle(ctx context.Context, in model.IncomingMessage) IngestReport
}

type ingestUC struct {
	classifier adapter.Classifier
	messages   repository.MessageRepository
	admins     repository.AlertAdminRepository
	bot        adapter.TelegramBotAdapter

	log *zerolog.Logger
	dev bool
	now func() time.Time
}

func NewIngestUseCase(
	classifier adapter.Classifier,
	messages repository.MessageRepository,
	admins repository.AlertAdminRepository,
	bot adapter.TelegramBotAdapter,
	logger *zerolog.Logger,
	dev bool,
) *ingestUC {
	return &ingestUC{
		classifier: classifier,
		messages:   messages,
		admins:     admins,
		bot:        bot,
		log:        logger,
		dev:        dev,
		now:        time.Now,
	}
}

// Handle runs typing -> classify -> persist -> reply -> alert. A failing step
// is logged and the remaining steps still run; nothing is retried.
func (u *ingestUC) Handle(ctx context.Context, in model.IncomingMessage) IngestReport {
	defer logging.TraceDuration(u.log, "IngestUC.Handle")()
	log := logging.With(logging.WithChatID(ctx, in.ChatID), u.log)

	var rep IngestReport
	if err := u.bot.SendTyping(ctx, in.ChatID); err != nil {
		log.Debug().Err(err).Msg("typing indicator failed")
		metrics.IncIngestStep("typing", false)
	}

	rep.Verdict = u.classifier.Classify(ctx, in.Text)
	rep.Flagged = rep.Verdict.Flagged()
	log.Info().
		Str("sender", in.SenderName).
		Str("text", logging.Redact(in.Text, u.dev)).
		Str("label", string(rep.Verdict.Label)).
		Float64("score", rep.Verdict.Score).
		Str("source", string(rep.Verdict.Source)).
		Msg("message classified")

	msg, err := model.NewMessage(in, rep.Verdict, u.now())
	if err == nil {
		err = u.messages.Save(ctx, nil, msg)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to store message")
		metrics.IncIngestStep("persist", false)
	} else {
		rep.Persisted = true
		metrics.IncIngestStep("persist", true)
	}

	if err := u.bot.ReplyVerdict(ctx, in.ChatID, in.MessageID, rep.Flagged); err != nil {
		log.Error().Err(err).Msg("failed to reply to sender")
		metrics.IncIngestStep("reply", false)
	} else {
		rep.Replied = true
		metrics.IncIngestStep("reply", true)
	}

	if !rep.Flagged {
		return rep
	}

	// msg is nil only when the verdict itself was unusable; alert from the
	// raw input so admins still hear about it.
	alert := model.Alert{
		Sender:  in.SenderName,
		ChatID:  in.ChatID,
		Text:    in.Text,
		Score:   model.RoundScore(rep.Verdict.Score),
		Reasons: rep.Verdict.Reasons,
	}
	if msg != nil {
		alert = model.NewAlert(msg)
	}

	ids, err := u.admins.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read admin registry, no alerts sent")
		metrics.IncIngestStep("alert", false)
		return rep
	}
	for _, id := range ids {
		if err := u.bot.SendAlert(ctx, id, alert); err != nil {
			rep.AlertsFailed++
			metrics.IncAdminAlert("failed")
			log.Warn().Err(err).Int64("admin_chat_id", id).Msg("failed to alert admin")
			continue
		}
		rep.AlertsSent++
		metrics.IncAdminAlert("sent")
	}
	metrics.IncIngestStep("alert", rep.AlertsFailed == 0)
	return rep
}
