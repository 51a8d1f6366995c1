package ai

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"police-security-bot/internal/domain"
	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/adapter"
	"police-security-bot/internal/infra/logging"
	"police-security-bot/internal/infra/metrics"
)

var _ adapter.Classifier = (*Classifier)(nil)

const systemPrompt = `You are a security AI that classifies Telegram messages as 'safe' or 'suspicious'.
Mark as 'suspicious' if it contains scams, illegal trade, hacking, terrorism, drugs, or threats.
Reply ONLY in JSON format like:
{"label":"suspicious","score":0.9,"reasons":["scam","fraudulent"]}`

type ClassifierOptions struct {
	Timeout   time.Duration // per call, default 15s
	MaxTokens int           // completion budget, default 150
	Truncator *Truncator    // optional input cap
}

// Classifier asks the completer for a verdict and falls back to
// KeywordVerdict on any failure: transport, timeout, empty answer or a
// payload outside the verdict schema.
type Classifier struct {
	completer adapter.Completer
	opts      ClassifierOptions
	log       *zerolog.Logger
}

func NewClassifier(completer adapter.Completer, opts ClassifierOptions, logger *zerolog.Logger) *Classifier {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 150
	}
	compLog := logger.With().Str("component", "Classifier").Str("provider", completer.Provider()).Logger()
	return &Classifier{completer: completer, opts: opts, log: &compLog}
}

// Prompt builds the fixed two-message conversation for text.
func Prompt(text string) []adapter.Message {
	return []adapter.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Message: " + text},
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) model.Verdict {
	defer logging.TraceDuration(c.log, "Classifier.Classify")()
	l := logging.With(ctx, c.log)

	callCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.completer.Complete(callCtx, Prompt(c.opts.Truncator.Truncate(text)), adapter.CompletionOptions{
		MaxTokens:   c.opts.MaxTokens,
		Temperature: 0,
		JSONOutput:  true,
	})
	metrics.ObserveClassifierCall(c.completer.Provider(), time.Since(start).Milliseconds(), err == nil)
	if err != nil {
		l.Warn().Err(err).Msg("classifier call failed; using keyword fallback")
		return c.fallback(text, "transport")
	}

	v, err := ParseVerdict(raw)
	if err != nil {
		cause := "schema"
		if errors.Is(err, domain.ErrEmptyResponse) {
			cause = "empty"
		}
		l.Warn().Err(err).Str("raw", logging.Redact(raw, false)).Msg("classifier verdict rejected; using keyword fallback")
		return c.fallback(text, cause)
	}

	metrics.ObserveVerdict(string(v.Source), string(v.Label))
	return v
}

func (c *Classifier) fallback(text, cause string) model.Verdict {
	metrics.IncClassifierFallback(cause)
	v := KeywordVerdict(text)
	metrics.ObserveVerdict(string(v.Source), string(v.Label))
	return v
}
