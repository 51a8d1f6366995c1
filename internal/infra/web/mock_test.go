//go:build !integration

package web

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"police-security-bot/internal/config"
	"police-security-bot/internal/domain"
	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func testWebConfig() config.WebConfig {
	return config.WebConfig{
		Addr:           ":0",
		JWTSecret:      "test-secret",
		AccessTTL:      time.Hour,
		AllowedOrigins: []string{"http://localhost:5500"},
		RequestTimeout: 5 * time.Second,
		FeedLimit:      50,
	}
}

// --- Mock DashboardUseCase ---

type mockDashboardUC struct {
	AuthenticateFunc func(ctx context.Context, addr, username, password string) (*model.DashboardAdmin, error)
	FeedFunc         func(ctx context.Context, label string, limit int) (*model.Feed, error)
	AdminByIDFunc    func(ctx context.Context, id int64) (*model.DashboardAdmin, error)

	mu         sync.Mutex
	loginAddrs []string
	feedCalls  []string
	feedLimits []int
}

var _ usecase.DashboardUseCase = (*mockDashboardUC)(nil)

func (m *mockDashboardUC) Authenticate(ctx context.Context, addr, username, password string) (*model.DashboardAdmin, error) {
	m.mu.Lock()
	m.loginAddrs = append(m.loginAddrs, addr)
	m.mu.Unlock()
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, addr, username, password)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *mockDashboardUC) Feed(ctx context.Context, label string, limit int) (*model.Feed, error) {
	m.mu.Lock()
	m.feedCalls = append(m.feedCalls, label)
	m.feedLimits = append(m.feedLimits, limit)
	m.mu.Unlock()
	if m.FeedFunc != nil {
		return m.FeedFunc(ctx, label, limit)
	}
	return &model.Feed{Messages: []*model.Message{}}, nil
}

func (m *mockDashboardUC) AdminByID(ctx context.Context, id int64) (*model.DashboardAdmin, error) {
	if m.AdminByIDFunc != nil {
		return m.AdminByIDFunc(ctx, id)
	}
	if id == 7 {
		return &model.DashboardAdmin{ID: 7, Username: "alice"}, nil
	}
	return nil, domain.ErrNotFound
}

// --- Mock SessionDenylist ---

type mockDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time

	RevokeFunc    func(ctx context.Context, tokenID string, until time.Time) error
	IsRevokedFunc func(ctx context.Context, tokenID string) (bool, error)
}

func newMockDenylist() *mockDenylist {
	return &mockDenylist{revoked: map[string]time.Time{}}
}

func (m *mockDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, tokenID, until)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = until
	return nil
}

func (m *mockDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if m.IsRevokedFunc != nil {
		return m.IsRevokedFunc(ctx, tokenID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}
