package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/repository"
)

var _ repository.MessageRepository = (*PostgresMessageRepo)(nil)

type PostgresMessageRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMessageRepo(pool *pgxpool.Pool) *PostgresMessageRepo {
	return &PostgresMessageRepo{pool: pool}
}

func (r *PostgresMessageRepo) Save(ctx context.Context, tx repository.Tx, m *model.Message) error {
	const q = `
INSERT INTO messages (chat_id, username, text, created_at, label, score, reasons)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id;`
	reasons := m.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	raw, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("encode reasons: %w", err)
	}
	row, err := pickRow(ctx, r.pool, tx, q, m.ChatID, m.Username, m.Text, m.CreatedAt, string(m.Label), m.Score, raw)
	if err != nil {
		return err
	}
	if err := row.Scan(&m.ID); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepo) Stats(ctx context.Context, tx repository.Tx) (model.MessageStats, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE label = 'suspicious'),
       COUNT(*) FILTER (WHERE label = 'safe')
  FROM messages;`
	var s model.MessageStats
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return s, err
	}
	if err := row.Scan(&s.Total, &s.Suspicious, &s.Safe); err != nil {
		return s, fmt.Errorf("message stats: %w", err)
	}
	return s, nil
}

func (r *PostgresMessageRepo) ListRecent(ctx context.Context, tx repository.Tx, label model.Label, limit int) ([]*model.Message, error) {
	const q = `
SELECT id, chat_id, username, text, created_at, label, score::float8, reasons
  FROM messages
 WHERE ($1 = '' OR label = $1)
 ORDER BY id DESC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, string(label), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.Message, 0, limit)
	for rows.Next() {
		var (
			m   model.Message
			lbl string
			raw []byte
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Username, &m.Text, &m.CreatedAt, &lbl, &m.Score, &raw); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Label = model.Label(lbl)
		m.Reasons = []string{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &m.Reasons); err != nil {
				return nil, fmt.Errorf("decode reasons of message %d: %w", m.ID, err)
			}
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
