package usecase

import (
	"context"
	"crypto/subtle"
	"slices"

	"police-security-bot/internal/domain"
	"police-security-bot/internal/domain/ports/repository"
	"police-security-bot/internal/infra/logging"
	"police-security-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ RegistryUseCase = (*registryUC)(nil)

// RegistryUseCase manages the chat ids that receive suspicious-message alerts.
type RegistryUseCase interface {
	Register(ctx context.Context, chatID int64, secret string) error
	Unregister(ctx context.Context, chatID int64) error
	List(ctx context.Context) ([]int64, error)
}

type registryUC struct {
	store  repository.AlertAdminRepository
	secret []byte
	log    *zerolog.Logger
}

func NewRegistryUseCase(store repository.AlertAdminRepository, secret string, logger *zerolog.Logger) *registryUC {
	return &registryUC{store: store, secret: []byte(secret), log: logger}
}

// Register adds chatID when secret matches. The secret is checked before the
// registry is read, so a wrong secret never reveals membership.
func (r *registryUC) Register(ctx context.Context, chatID int64, secret string) error {
	defer logging.TraceDuration(r.log, "RegistryUC.Register")()

	if len(r.secret) == 0 || subtle.ConstantTimeCompare([]byte(secret), r.secret) != 1 {
		r.log.Warn().Int64("chat_id", chatID).Msg("admin registration with invalid secret")
		return domain.ErrInvalidSecret
	}

	var size int
	err := r.store.Update(ctx, func(ids []int64) ([]int64, error) {
		if slices.Contains(ids, chatID) {
			return nil, domain.ErrAlreadyRegistered
		}
		ids = append(ids, chatID)
		size = len(ids)
		return ids, nil
	})
	if err != nil {
		return err
	}
	metrics.SetAlertAdmins(size)
	r.log.Info().Int64("chat_id", chatID).Msg("admin registered")
	return nil
}

func (r *registryUC) Unregister(ctx context.Context, chatID int64) error {
	defer logging.TraceDuration(r.log, "RegistryUC.Unregister")()

	var size int
	err := r.store.Update(ctx, func(ids []int64) ([]int64, error) {
		i := slices.Index(ids, chatID)
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		ids = slices.Delete(ids, i, i+1)
		size = len(ids)
		return ids, nil
	})
	if err != nil {
		return err
	}
	metrics.SetAlertAdmins(size)
	r.log.Info().Int64("chat_id", chatID).Msg("admin unregistered")
	return nil
}

func (r *registryUC) List(ctx context.Context) ([]int64, error) {
	ids, err := r.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.SetAlertAdmins(len(ids))
	return ids, nil
}
