package repository

import (
	"context"

	"police-security-bot/internal/domain/model"
)

// -----------------------------
// Dashboard admins (web logins)
// -----------------------------

type DashboardAdminRepository interface {
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.DashboardAdmin, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.DashboardAdmin, error)
	// Save inserts a, or updates the password hash when the username exists.
	Save(ctx context.Context, tx Tx, a *model.DashboardAdmin) error
}

// -----------------------------
// Alert admins (Telegram chat ids)
// -----------------------------

// AlertAdminRepository is the durable list of chat ids that receive alerts.
// Load on a fresh store returns an empty list.
type AlertAdminRepository interface {
	Load(ctx context.Context) ([]int64, error)
	// Update runs fn over the current list and persists what it returns.
	// fn's error aborts the write and is returned unchanged.
	Update(ctx context.Context, fn func(ids []int64) ([]int64, error)) error
}
