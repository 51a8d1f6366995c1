package ai

import (
	"context"
	"errors"

	"police-security-bot/internal/domain/ports/adapter"
)

var _ adapter.Completer = (*NoopCompleter)(nil)

// ErrNoProvider is returned by NoopCompleter for every call.
var ErrNoProvider = errors.New("no classifier provider configured")

// NoopCompleter is used with classifier.provider "none": every message is
// judged by the keyword heuristic alone. Handy for local runs without an
// API key.
type NoopCompleter struct{}

func NewNoopCompleter() *NoopCompleter { return &NoopCompleter{} }

func (NoopCompleter) Provider() string { return "none" }

func (NoopCompleter) Complete(ctx context.Context, _ []adapter.Message, _ adapter.CompletionOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrNoProvider
}
