package adapter

import (
	"context"

	"police-security-bot/internal/domain/model"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// CompletionOptions are the sampling knobs the classifier fixes per call.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
	JSONOutput  bool
}

// Completer is the port for a single LLM chat completion.
type Completer interface {
	// Complete returns only the assistant text of the first choice.
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
	Provider() string
}

// Classifier turns message text into a verdict. It never fails: any
// upstream problem degrades to the keyword heuristic.
type Classifier interface {
	Classify(ctx context.Context, text string) model.Verdict
}
