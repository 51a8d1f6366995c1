package redis

import (
	"context"
	"time"

	"police-security-bot/internal/config"
	"police-security-bot/internal/domain/ports/repository"
)

var (
	_ repository.LoginLimiter    = (*LoginLimiter)(nil)
	_ repository.SessionDenylist = (*SessionDenylist)(nil)
)

// LoginLimiter keeps failed logins per address in a sorted set scored by
// time, and a separate key whose TTL is the block.
type LoginLimiter struct {
	client RedisClient
	cfg    config.LockoutConfig
	now    func() time.Time
}

func NewLoginLimiter(client RedisClient, cfg config.LockoutConfig) *LoginLimiter {
	return &LoginLimiter{client: client, cfg: cfg, now: time.Now}
}

func failKey(addr string) string  { return "login:fail:" + addr }
func blockKey(addr string) string { return "login:block:" + addr }

func (l *LoginLimiter) Blocked(ctx context.Context, addr string) (bool, error) {
	return l.client.Exists(ctx, blockKey(addr))
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, addr string) (bool, error) {
	n, err := l.client.RecordInWindow(ctx, failKey(addr), l.now(), l.cfg.Window)
	if err != nil {
		return false, err
	}
	if n < int64(l.cfg.MaxFailures) {
		return false, nil
	}
	if err := l.client.Set(ctx, blockKey(addr), "1", l.cfg.BlockFor); err != nil {
		return false, err
	}
	if err := l.client.Del(ctx, failKey(addr)); err != nil {
		return true, err
	}
	return true, nil
}

// SessionDenylist stores revoked token ids until their natural expiry.
type SessionDenylist struct {
	client RedisClient
	now    func() time.Time
}

func NewSessionDenylist(client RedisClient) *SessionDenylist {
	return &SessionDenylist{client: client, now: time.Now}
}

func revokedKey(tokenID string) string { return "session:revoked:" + tokenID }

func (d *SessionDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, revokedKey(tokenID), "1", ttl)
}

func (d *SessionDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return d.client.Exists(ctx, revokedKey(tokenID))
}
