package repository

import (
	"context"

	"police-security-bot/internal/domain/model"
)

// MessageRepository stores classified messages. Rows are append-only.
type MessageRepository interface {
	// Save inserts m and sets m.ID.
	Save(ctx context.Context, tx Tx, m *model.Message) error
	// Stats counts all rows regardless of any feed filter.
	Stats(ctx context.Context, tx Tx) (model.MessageStats, error)
	// ListRecent returns up to limit rows, newest first; an empty label
	// means no filter.
	ListRecent(ctx context.Context, tx Tx, label model.Label, limit int) ([]*model.Message, error)
}
