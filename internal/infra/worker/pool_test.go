//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestPool(t *testing.T) {
	t.Run("single worker keeps submission order", func(t *testing.T) {
		p := NewPool(1, 4, testLogger())
		p.Start(context.Background())

		var mu sync.Mutex
		var got []int
		for i := 0; i < 50; i++ {
			i := i
			if err := p.Submit(context.Background(), func(context.Context) error {
				mu.Lock()
				got = append(got, i)
				mu.Unlock()
				return nil
			}); err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
		}
		p.Stop()

		if len(got) != 50 {
			t.Fatalf("expected 50 tasks, got %d", len(got))
		}
		for i, v := range got {
			if v != i {
				t.Fatalf("order broken at %d: %v", i, got)
			}
		}
	})

	t.Run("panic in one task does not kill the worker", func(t *testing.T) {
		p := NewPool(1, 2, testLogger())
		p.Start(context.Background())

		var ran int32
		_ = p.Submit(context.Background(), func(context.Context) error { panic("boom") })
		_ = p.Submit(context.Background(), func(context.Context) error { atomic.AddInt32(&ran, 1); return nil })
		p.Stop()

		if atomic.LoadInt32(&ran) != 1 {
			t.Error("task after the panic did not run")
		}
	})

	t.Run("submit blocks until ctx is done when the queue is full", func(t *testing.T) {
		p := NewPool(1, 0, testLogger()) // not started: nothing drains

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		err := p.Submit(ctx, func(context.Context) error { return nil })
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("submit after stop fails", func(t *testing.T) {
		p := NewPool(2, 1, testLogger())
		p.Start(context.Background())
		p.Stop()

		if err := p.Submit(context.Background(), func(context.Context) error { return nil }); !errors.Is(err, ErrPoolStopped) {
			t.Errorf("expected ErrPoolStopped, got %v", err)
		}
		p.Stop() // idempotent
	})

	t.Run("nil task is rejected", func(t *testing.T) {
		p := NewPool(1, 1, testLogger())
		if err := p.Submit(context.Background(), nil); err == nil {
			t.Error("expected an error")
		}
	})
}
