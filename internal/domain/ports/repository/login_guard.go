package repository

import (
	"context"
	"time"
)

// LoginLimiter tracks failed dashboard logins per client address.
type LoginLimiter interface {
	// Blocked reports whether addr is currently locked out.
	Blocked(ctx context.Context, addr string) (bool, error)
	// RecordFailure notes a failed attempt. When the failures inside the
	// window reach the limit the address is blocked, its failure history is
	// cleared, and true is returned.
	RecordFailure(ctx context.Context, addr string) (bool, error)
}

// SessionDenylist remembers revoked session tokens until they would have
// expired anyway.
type SessionDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
