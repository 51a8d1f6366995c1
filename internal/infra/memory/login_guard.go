// Package memory holds process-local stand-ins for the Redis-backed guards.
// State is lost on restart and is not shared between instances.
package memory

import (
	"context"
	"sync"
	"time"

	"police-security-bot/internal/config"
	"police-security-bot/internal/domain/ports/repository"
)

var (
	_ repository.LoginLimiter    = (*LoginLimiter)(nil)
	_ repository.SessionDenylist = (*SessionDenylist)(nil)
)

type LoginLimiter struct {
	mu       sync.Mutex
	cfg      config.LockoutConfig
	failures map[string][]time.Time
	blocked  map[string]time.Time // addr -> block expiry
	now      func() time.Time
}

func NewLoginLimiter(cfg config.LockoutConfig) *LoginLimiter {
	return &LoginLimiter{
		cfg:      cfg,
		failures: map[string][]time.Time{},
		blocked:  map[string]time.Time{},
		now:      time.Now,
	}
}

// WithClock replaces the time source; tests only.
func (l *LoginLimiter) WithClock(now func() time.Time) *LoginLimiter {
	l.now = now
	return l
}

func (l *LoginLimiter) Blocked(_ context.Context, addr string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.blocked[addr]
	if !ok {
		return false, nil
	}
	if !l.now().Before(until) {
		delete(l.blocked, addr)
		return false, nil
	}
	return true, nil
}

func (l *LoginLimiter) RecordFailure(_ context.Context, addr string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.cfg.Window)
	kept := l.failures[addr][:0]
	for _, t := range l.failures[addr] {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)

	if len(kept) >= l.cfg.MaxFailures {
		l.blocked[addr] = now.Add(l.cfg.BlockFor)
		delete(l.failures, addr)
		return true, nil
	}
	l.failures[addr] = kept
	return false, nil
}

type SessionDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewSessionDenylist() *SessionDenylist {
	return &SessionDenylist{revoked: map[string]time.Time{}, now: time.Now}
}

func (d *SessionDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for id, exp := range d.revoked {
		if !now.Before(exp) {
			delete(d.revoked, id)
		}
	}
	if until.After(now) {
		d.revoked[tokenID] = until
	}
	return nil
}

func (d *SessionDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.revoked[tokenID]
	return ok && d.now().Before(exp), nil
}

// RateLimiter is the in-process fixed-window counter used when Redis is off.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: map[string]window{}, now: time.Now}
}

func (r *RateLimiter) Allow(_ context.Context, key string, limit int, d time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	w, ok := r.windows[key]
	if !ok || now.Sub(w.start) >= d {
		w = window{start: now}
	}
	w.count++
	r.windows[key] = w
	return w.count <= limit, nil
}
