//go:build !integration

package ai

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"police-security-bot/internal/domain/ports/adapter"
)

// runeTokenizer treats every rune as one token.
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string, _, _ []string) []int {
	out := make([]int, 0, len(text))
	for _, r := range text {
		out = append(out, int(r))
	}
	return out
}

func (runeTokenizer) Decode(tokens []int) string {
	rs := make([]rune, len(tokens))
	for i, t := range tokens {
		rs[i] = rune(t)
	}
	return string(rs)
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestTruncator(t *testing.T) {
	t.Run("should cut text above the budget", func(t *testing.T) {
		tr := NewTruncator(5, nopLogger())
		tr.load = func() (tokenizer, error) { return runeTokenizer{}, nil }

		if got := tr.Truncate("abcdefgh"); got != "abcde" {
			t.Errorf("Truncate() = %q", got)
		}
		if got := tr.Truncate("abc"); got != "abc" {
			t.Errorf("short text changed: %q", got)
		}
	})

	t.Run("should pass text through when the encoding cannot load", func(t *testing.T) {
		tr := NewTruncator(2, nopLogger())
		calls := 0
		tr.load = func() (tokenizer, error) { calls++; return nil, errors.New("offline") }

		if got := tr.Truncate("abcdef"); got != "abcdef" {
			t.Errorf("Truncate() = %q", got)
		}
		_ = tr.Truncate("again")
		if calls != 1 {
			t.Errorf("encoding load should be attempted once, got %d", calls)
		}
	})

	t.Run("disabled and nil truncators are no-ops", func(t *testing.T) {
		var nilTr *Truncator
		if nilTr.Truncate("abc") != "abc" {
			t.Error("nil truncator changed text")
		}
		tr := NewTruncator(0, nopLogger())
		tr.load = func() (tokenizer, error) { t.Fatal("should not load"); return nil, nil }
		if tr.Truncate("abc") != "abc" {
			t.Error("disabled truncator changed text")
		}
	})
}

type slowCompleter struct {
	inFlight, peak int32
}

func (s *slowCompleter) Provider() string { return "slow" }

func (s *slowCompleter) Complete(ctx context.Context, _ []adapter.Message, _ adapter.CompletionOptions) (string, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	for {
		p := atomic.LoadInt32(&s.peak)
		if n <= p || atomic.CompareAndSwapInt32(&s.peak, p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	atomic.AddInt32(&s.inFlight, -1)
	return "ok", nil
}

func TestLimitedCompleter(t *testing.T) {
	t.Run("should bound concurrent calls", func(t *testing.T) {
		inner := &slowCompleter{}
		lim := NewLimitedCompleter(inner, 2)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = lim.Complete(context.Background(), nil, adapter.CompletionOptions{})
			}()
		}
		wg.Wait()

		if p := atomic.LoadInt32(&inner.peak); p > 2 {
			t.Errorf("peak concurrency %d exceeds limit", p)
		}
		if lim.Provider() != "slow" {
			t.Errorf("provider not forwarded")
		}
	})

	t.Run("should give up when ctx is done while waiting", func(t *testing.T) {
		lim := NewLimitedCompleter(&slowCompleter{}, 1).(*limitedCompleter)
		lim.sem <- struct{}{} // occupy the only slot

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := lim.Complete(ctx, nil, adapter.CompletionOptions{}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("non-positive limit returns the inner completer", func(t *testing.T) {
		inner := &slowCompleter{}
		if NewLimitedCompleter(inner, 0) != adapter.Completer(inner) {
			t.Error("expected inner completer to be returned as is")
		}
	})
}
