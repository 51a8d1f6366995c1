package ai

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
)

const defaultEncoding = "cl100k_base"

// tokenizer is the subset of *tiktoken.Tiktoken the truncator needs.
type tokenizer interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Truncator caps message text at a token budget before it is sent upstream.
// The encoding is loaded lazily; if it cannot be loaded the text passes
// through unchanged.
type Truncator struct {
	maxTokens int
	log       *zerolog.Logger

	once sync.Once
	load func() (tokenizer, error)
	enc  tokenizer
}

func NewTruncator(maxTokens int, logger *zerolog.Logger) *Truncator {
	return &Truncator{
		maxTokens: maxTokens,
		log:       logger,
		load: func() (tokenizer, error) {
			return tiktoken.GetEncoding(defaultEncoding)
		},
	}
}

func (t *Truncator) Truncate(text string) string {
	if t == nil || t.maxTokens <= 0 || text == "" {
		return text
	}
	t.once.Do(func() {
		enc, err := t.load()
		if err != nil {
			t.log.Warn().Err(err).Str("encoding", defaultEncoding).Msg("tokenizer unavailable; input will not be truncated")
			return
		}
		t.enc = enc
	})
	if t.enc == nil {
		return text
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= t.maxTokens {
		return text
	}
	return t.enc.Decode(tokens[:t.maxTokens])
}
