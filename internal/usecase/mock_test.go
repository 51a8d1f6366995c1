//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"police-security-bot/internal/domain"
	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/adapter"
	"police-security-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func mustHash(password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}

// =============================
// Adapters
// =============================

// ---- Mock TelegramBotAdapter ----

type sentAlert struct {
	ChatID int64
	Alert  model.Alert
}

type sentReply struct {
	ChatID  int64
	ReplyTo int
	Flagged bool
}

type MockTelegramBot struct {
	mu      sync.Mutex
	Sent    []adapter.SendMessageParams
	Typing  []int64
	Replies []sentReply
	Alerts  []sentAlert

	SendMessageFunc  func(ctx context.Context, params adapter.SendMessageParams) error
	SendTypingFunc   func(ctx context.Context, chatID int64) error
	ReplyVerdictFunc func(ctx context.Context, chatID int64, replyTo int, flagged bool) error
	SendAlertFunc    func(ctx context.Context, adminChatID int64, alert model.Alert) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, params adapter.SendMessageParams) error {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, params)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, params)
	return nil
}

func (m *MockTelegramBot) SendTyping(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	m.Typing = append(m.Typing, chatID)
	m.mu.Unlock()
	if m.SendTypingFunc != nil {
		return m.SendTypingFunc(ctx, chatID)
	}
	return nil
}

func (m *MockTelegramBot) ReplyVerdict(ctx context.Context, chatID int64, replyTo int, flagged bool) error {
	if m.ReplyVerdictFunc != nil {
		if err := m.ReplyVerdictFunc(ctx, chatID, replyTo, flagged); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Replies = append(m.Replies, sentReply{ChatID: chatID, ReplyTo: replyTo, Flagged: flagged})
	return nil
}

func (m *MockTelegramBot) SendAlert(ctx context.Context, adminChatID int64, alert model.Alert) error {
	if m.SendAlertFunc != nil {
		if err := m.SendAlertFunc(ctx, adminChatID, alert); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, sentAlert{ChatID: adminChatID, Alert: alert})
	return nil
}

// ---- Mock Classifier ----

type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, text string) model.Verdict
	Texts        []string
}

var _ adapter.Classifier = (*MockClassifier)(nil)

func (m *MockClassifier) Classify(ctx context.Context, text string) model.Verdict {
	m.Texts = append(m.Texts, text)
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text)
	}
	return model.Verdict{Label: model.LabelSafe, Score: 0.1, Reasons: []string{}, Source: model.SourceModel}
}

func verdictOf(label model.Label, score float64, reasons ...string) *MockClassifier {
	if reasons == nil {
		reasons = []string{}
	}
	return &MockClassifier{ClassifyFunc: func(context.Context, string) model.Verdict {
		return model.Verdict{Label: label, Score: score, Reasons: reasons, Source: model.SourceModel}
	}}
}

// =============================
// Repositories
// =============================

// ---- Mock MessageRepository ----

type MockMessageRepo struct {
	mu     sync.Mutex
	nextID int64
	Saved  []*model.Message

	SaveFunc       func(ctx context.Context, tx repository.Tx, m *model.Message) error
	StatsFunc      func(ctx context.Context, tx repository.Tx) (model.MessageStats, error)
	ListRecentFunc func(ctx context.Context, tx repository.Tx, label model.Label, limit int) ([]*model.Message, error)
}

var _ repository.MessageRepository = (*MockMessageRepo)(nil)

func NewMockMessageRepo() *MockMessageRepo { return &MockMessageRepo{} }

func (m *MockMessageRepo) Save(ctx context.Context, tx repository.Tx, msg *model.Message) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	m.Saved = append(m.Saved, msg)
	return nil
}

func (m *MockMessageRepo) Stats(ctx context.Context, tx repository.Tx) (model.MessageStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var s model.MessageStats
	for _, msg := range m.Saved {
		s.Total++
		if msg.Label == model.LabelSuspicious {
			s.Suspicious++
		} else {
			s.Safe++
		}
	}
	return s, nil
}

func (m *MockMessageRepo) ListRecent(ctx context.Context, tx repository.Tx, label model.Label, limit int) ([]*model.Message, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, tx, label, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Message
	for i := len(m.Saved) - 1; i >= 0 && len(out) < limit; i-- {
		if label == "" || m.Saved[i].Label == label {
			out = append(out, m.Saved[i])
		}
	}
	return out, nil
}

// ---- Mock AlertAdminRepository (in-memory list) ----

type MockAlertAdminRepo struct {
	mu  sync.Mutex
	IDs []int64

	LoadFunc   func(ctx context.Context) ([]int64, error)
	UpdateFunc func(ctx context.Context, fn func([]int64) ([]int64, error)) error
	Writes     int
}

var _ repository.AlertAdminRepository = (*MockAlertAdminRepo)(nil)

func NewMockAlertAdminRepo(ids ...int64) *MockAlertAdminRepo {
	return &MockAlertAdminRepo{IDs: ids}
}

func (m *MockAlertAdminRepo) Load(ctx context.Context) ([]int64, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.IDs), nil
}

func (m *MockAlertAdminRepo) Update(ctx context.Context, fn func([]int64) ([]int64, error)) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, fn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(slices.Clone(m.IDs))
	if err != nil {
		return err
	}
	m.IDs = next
	m.Writes++
	return nil
}

// ---- Mock DashboardAdminRepository ----

type MockDashboardAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*model.DashboardAdmin
	nextID int64

	FindByUsernameFunc func(ctx context.Context, tx repository.Tx, username string) (*model.DashboardAdmin, error)
}

var _ repository.DashboardAdminRepository = (*MockDashboardAdminRepo)(nil)

func NewMockDashboardAdminRepo() *MockDashboardAdminRepo {
	return &MockDashboardAdminRepo{admins: map[string]*model.DashboardAdmin{}}
}

func (m *MockDashboardAdminRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.DashboardAdmin, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, tx, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (m *MockDashboardAdminRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.DashboardAdmin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockDashboardAdminRepo) Save(ctx context.Context, tx repository.Tx, a *model.DashboardAdmin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.admins[a.Username]; ok {
		cur.PasswordHash = a.PasswordHash
		a.ID = cur.ID
		return nil
	}
	m.nextID++
	a.ID = m.nextID
	m.admins[a.Username] = a
	return nil
}

// ---- Mock LoginLimiter ----

// MockLoginLimiter counts failures without a time window.
type MockLoginLimiter struct {
	mu       sync.Mutex
	Max      int
	failures map[string]int
	blocked  map[string]bool

	BlockedFunc func(ctx context.Context, addr string) (bool, error)
}

var _ repository.LoginLimiter = (*MockLoginLimiter)(nil)

func NewMockLoginLimiter(max int) *MockLoginLimiter {
	return &MockLoginLimiter{Max: max, failures: map[string]int{}, blocked: map[string]bool{}}
}

func (m *MockLoginLimiter) Blocked(ctx context.Context, addr string) (bool, error) {
	if m.BlockedFunc != nil {
		return m.BlockedFunc(ctx, addr)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blocked[addr], nil
}

func (m *MockLoginLimiter) RecordFailure(ctx context.Context, addr string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[addr]++
	if m.failures[addr] >= m.Max {
		m.blocked[addr] = true
		delete(m.failures, addr)
		return true, nil
	}
	return false, nil
}

func (m *MockLoginLimiter) Failures(addr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[addr]
}
