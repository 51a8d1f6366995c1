package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"police-security-bot/internal/domain"
	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/repository"
)

var _ repository.DashboardAdminRepository = (*PostgresAdminRepo)(nil)

type PostgresAdminRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAdminRepo(pool *pgxpool.Pool) *PostgresAdminRepo {
	return &PostgresAdminRepo{pool: pool}
}

const adminColumns = `id, username, password_hash, created_at`

func (r *PostgresAdminRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.DashboardAdmin, error) {
	return r.findOne(ctx, tx, `SELECT `+adminColumns+` FROM admins WHERE username=$1;`, username)
}

func (r *PostgresAdminRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.DashboardAdmin, error) {
	return r.findOne(ctx, tx, `SELECT `+adminColumns+` FROM admins WHERE id=$1;`, id)
}

func (r *PostgresAdminRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.DashboardAdmin, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	var a model.DashboardAdmin
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
	}
	return &a, nil
}

func (r *PostgresAdminRepo) Save(ctx context.Context, tx repository.Tx, a *model.DashboardAdmin) error {
	const q = `
INSERT INTO admins (username, password_hash, created_at)
VALUES ($1,$2,$3)
ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
RETURNING id, created_at;`
	row, err := pickRow(ctx, r.pool, tx, q, a.Username, a.PasswordHash, a.CreatedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("save admin: %w", err)
	}
	return nil
}
