package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"police-security-bot/internal/domain"
	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/repository"
	"police-security-bot/internal/infra/logging"
	"police-security-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time check
var _ DashboardUseCase = (*dashboardUC)(nil)

const DefaultFeedLimit = 50

type DashboardUseCase interface {
	// Authenticate verifies credentials for a client address. It returns
	// ErrTooManyAttempts while addr is blocked (even for a correct password),
	// ErrAccountLocked when this failure triggers the block, and
	// ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, addr, username, password string) (*model.DashboardAdmin, error)
	// Feed returns global counts and up to limit newest messages. label may
	// be empty, "safe" or "suspicious".
	Feed(ctx context.Context, label string, limit int) (*model.Feed, error)
	AdminByID(ctx context.Context, id int64) (*model.DashboardAdmin, error)
}

type dashboardUC struct {
	admins   repository.DashboardAdminRepository
	messages repository.MessageRepository
	limiter  repository.LoginLimiter
	log      *zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewDashboardUseCase(
	admins repository.DashboardAdminRepository,
	messages repository.MessageRepository,
	limiter repository.LoginLimiter,
	logger *zerolog.Logger,
) *dashboardUC {
	return &dashboardUC{admins: admins, messages: messages, limiter: limiter, log: logger}
}

func (d *dashboardUC) Authenticate(ctx context.Context, addr, username, password string) (*model.DashboardAdmin, error) {
	defer logging.TraceDuration(d.log, "DashboardUC.Authenticate")()

	blocked, err := d.limiter.Blocked(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("check login block: %w", err)
	}
	if blocked {
		metrics.IncLogin("blocked")
		d.log.Warn().Str("addr", addr).Msg("login attempt while blocked")
		return nil, domain.ErrTooManyAttempts
	}

	admin, err := d.admins.FindByUsername(ctx, repository.NoTX, username)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if admin != nil && bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil {
		metrics.IncLogin("success")
		d.log.Info().Int64("admin_id", admin.ID).Str("addr", addr).Msg("dashboard login")
		return admin, nil
	}
	if admin == nil {
		// same bcrypt cost for unknown users
		_ = bcrypt.CompareHashAndPassword(d.dummy(), []byte(password))
	}

	nowBlocked, err := d.limiter.RecordFailure(ctx, addr)
	if err != nil {
		d.log.Error().Err(err).Str("addr", addr).Msg("failed to record login failure")
	}
	if nowBlocked {
		metrics.IncLogin("locked")
		d.log.Warn().Str("addr", addr).Msg("address locked after repeated login failures")
		return nil, domain.ErrAccountLocked
	}
	metrics.IncLogin("invalid")
	return nil, domain.ErrInvalidCredentials
}

func (d *dashboardUC) dummy() []byte {
	d.dummyOnce.Do(func() {
		d.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	return d.dummyHash
}

func (d *dashboardUC) Feed(ctx context.Context, label string, limit int) (*model.Feed, error) {
	defer logging.TraceDuration(d.log, "DashboardUC.Feed")()

	var filter model.Label
	if label != "" {
		l, err := model.ParseLabel(label)
		if err != nil {
			return nil, err
		}
		filter = l
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	stats, err := d.messages.Stats(ctx, repository.NoTX)
	if err != nil {
		return nil, fmt.Errorf("message stats: %w", err)
	}
	msgs, err := d.messages.ListRecent(ctx, repository.NoTX, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	return &model.Feed{Stats: stats, Messages: msgs}, nil
}

func (d *dashboardUC) AdminByID(ctx context.Context, id int64) (*model.DashboardAdmin, error) {
	return d.admins.FindByID(ctx, repository.NoTX, id)
}
