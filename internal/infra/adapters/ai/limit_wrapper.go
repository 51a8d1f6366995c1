package ai

import (
	"context"

	"police-security-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.Completer = (*limitedCompleter)(nil)

type limitedCompleter struct {
	inner adapter.Completer
	sem   chan struct{}
}

// NewLimitedCompleter bounds the number of in-flight upstream calls.
func NewLimitedCompleter(inner adapter.Completer, maxConcurrent int) adapter.Completer {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedCompleter{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedCompleter) Provider() string { return l.inner.Provider() }

func (l *limitedCompleter) Complete(ctx context.Context, messages []adapter.Message, opts adapter.CompletionOptions) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Complete(ctx, messages, opts)
}
