package model

import (
	"strings"
	"time"

	"police-security-bot/internal/domain"
)

// DashboardAdmin is a web dashboard login. It is unrelated to the Telegram
// chat ids that receive alerts.
type DashboardAdmin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

func NewDashboardAdmin(username, passwordHash string) (*DashboardAdmin, error) {
	username = strings.TrimSpace(username)
	if username == "" || passwordHash == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &DashboardAdmin{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (a *DashboardAdmin) IsZero() bool { return a == nil || a.ID == 0 }
