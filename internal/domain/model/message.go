package model

import (
	"strconv"
	"strings"
	"time"

	"police-security-bot/internal/domain"
)

// IncomingMessage is a plain-text Telegram message waiting for moderation.
type IncomingMessage struct {
	ChatID     int64
	MessageID  int
	SenderName string
	Text       string
	ReceivedAt time.Time
}

// SenderName picks the display name stored with a message: the Telegram
// username, else the first name, else the numeric user id.
func SenderName(username, firstName string, userID int64) string {
	if u := strings.TrimSpace(username); u != "" {
		return u
	}
	if f := strings.TrimSpace(firstName); f != "" {
		return f
	}
	return strconv.FormatInt(userID, 10)
}

// Message is a stored, classified message. Rows are never updated.
type Message struct {
	ID        int64
	ChatID    int64
	Username  string
	Text      string
	CreatedAt time.Time
	Label     Label
	Score     float64
	Reasons   []string
}

func NewMessage(in IncomingMessage, v Verdict, now time.Time) (*Message, error) {
	if !v.Label.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	if in.ChatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	reasons := v.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	created := in.ReceivedAt
	if created.IsZero() {
		created = now
	}
	return &Message{
		ChatID:    in.ChatID,
		Username:  in.SenderName,
		Text:      in.Text,
		CreatedAt: created.UTC(),
		Label:     v.Label,
		Score:     RoundScore(v.Score),
		Reasons:   reasons,
	}, nil
}

func (m *Message) Flagged() bool {
	return m.Label == LabelSuspicious && m.Score >= FlagThreshold
}

// Alert is what every registered admin receives for a flagged message.
type Alert struct {
	Sender  string
	ChatID  int64
	Text    string
	Score   float64
	Reasons []string
}

func NewAlert(m *Message) Alert {
	return Alert{
		Sender:  m.Username,
		ChatID:  m.ChatID,
		Text:    m.Text,
		Score:   m.Score,
		Reasons: m.Reasons,
	}
}

// MessageStats counts rows over the whole table, independent of any filter.
type MessageStats struct {
	Total      int
	Suspicious int
	Safe       int
}

// Feed is one dashboard page: global counts plus the newest messages.
type Feed struct {
	Stats    MessageStats
	Messages []*Message
}
