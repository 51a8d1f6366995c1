//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/repository"
	ai "police-security-bot/internal/infra/adapters/ai"
	"police-security-bot/internal/usecase"
)

func incoming(text string) model.IncomingMessage {
	return model.IncomingMessage{ChatID: 42, MessageID: 7, SenderName: "alice", Text: text}
}

func TestIngestUseCase(t *testing.T) {
	ctx := context.Background()
	testLogger := newTestLogger()

	t.Run("safe message is stored and acknowledged without alerts", func(t *testing.T) {
		// --- Arrange ---
		bot := &MockTelegramBot{}
		repo := NewMockMessageRepo()
		admins := NewMockAlertAdminRepo(100, 200)
		uc := usecase.NewIngestUseCase(verdictOf(model.LabelSafe, 0.05), repo, admins, bot, testLogger, false)

		// --- Act ---
		rep := uc.Handle(ctx, incoming("good morning"))

		// --- Assert ---
		if !rep.Persisted || !rep.Replied || rep.Flagged {
			t.Fatalf("unexpected report %+v", rep)
		}
		if len(repo.Saved) != 1 || repo.Saved[0].Username != "alice" || repo.Saved[0].Label != model.LabelSafe {
			t.Fatalf("unexpected stored rows %+v", repo.Saved)
		}
		if len(bot.Replies) != 1 || bot.Replies[0].Flagged || bot.Replies[0].ReplyTo != 7 {
			t.Errorf("unexpected replies %+v", bot.Replies)
		}
		if len(bot.Alerts) != 0 {
			t.Errorf("safe message must not alert, got %d", len(bot.Alerts))
		}
		if len(bot.Typing) != 1 || bot.Typing[0] != 42 {
			t.Errorf("typing indicator not sent: %v", bot.Typing)
		}
	})

	t.Run("flagged message warns the sender and alerts every admin", func(t *testing.T) {
		// --- Arrange ---
		bot := &MockTelegramBot{}
		repo := NewMockMessageRepo()
		admins := NewMockAlertAdminRepo(100, 200, 300)
		uc := usecase.NewIngestUseCase(verdictOf(model.LabelSuspicious, 0.93, "scam"), repo, admins, bot, testLogger, false)

		// --- Act ---
		rep := uc.Handle(ctx, incoming("send me your card"))

		// --- Assert ---
		if !rep.Flagged || rep.AlertsSent != 3 || rep.AlertsFailed != 0 {
			t.Fatalf("unexpected report %+v", rep)
		}
		if !bot.Replies[0].Flagged {
			t.Error("sender should get the warning reply")
		}
		for i, want := range []int64{100, 200, 300} {
			a := bot.Alerts[i]
			if a.ChatID != want {
				t.Errorf("alert %d went to %d, want %d", i, a.ChatID, want)
			}
			if a.Alert.Sender != "alice" || a.Alert.ChatID != 42 || a.Alert.Score != 0.93 || a.Alert.Text != "send me your card" {
				t.Errorf("unexpected alert payload %+v", a.Alert)
			}
		}
	})

	t.Run("threshold is inclusive and only applies to suspicious", func(t *testing.T) {
		cases := []struct {
			name    string
			label   model.Label
			score   float64
			flagged bool
		}{
			{"suspicious at 0.5", model.LabelSuspicious, 0.5, true},
			{"suspicious at 0.49", model.LabelSuspicious, 0.49, false},
			{"safe at 0.99", model.LabelSafe, 0.99, false},
		}
		for _, tc := range cases {
			bot := &MockTelegramBot{}
			uc := usecase.NewIngestUseCase(verdictOf(tc.label, tc.score), NewMockMessageRepo(), NewMockAlertAdminRepo(1), bot, testLogger, false)
			rep := uc.Handle(ctx, incoming("x"))
			if rep.Flagged != tc.flagged || (len(bot.Alerts) == 1) != tc.flagged {
				t.Errorf("%s: flagged=%v alerts=%d", tc.name, rep.Flagged, len(bot.Alerts))
			}
		}
	})

	t.Run("storage failure still replies and alerts", func(t *testing.T) {
		// --- Arrange ---
		bot := &MockTelegramBot{}
		repo := NewMockMessageRepo()
		repo.SaveFunc = func(context.Context, repository.Tx, *model.Message) error { return errors.New("db down") }
		uc := usecase.NewIngestUseCase(verdictOf(model.LabelSuspicious, 0.8), repo, NewMockAlertAdminRepo(9), bot, testLogger, false)

		// --- Act ---
		rep := uc.Handle(ctx, incoming("weapons"))

		// --- Assert ---
		if rep.Persisted {
			t.Error("expected Persisted=false")
		}
		if !rep.Replied || rep.AlertsSent != 1 {
			t.Errorf("later steps should still run: %+v", rep)
		}
	})

	t.Run("one failing admin does not stop the others", func(t *testing.T) {
		// --- Arrange ---
		bot := &MockTelegramBot{}
		bot.SendAlertFunc = func(_ context.Context, id int64, _ model.Alert) error {
			if id == 2 {
				return errors.New("bot was blocked by the user")
			}
			return nil
		}
		uc := usecase.NewIngestUseCase(verdictOf(model.LabelSuspicious, 0.7), NewMockMessageRepo(), NewMockAlertAdminRepo(1, 2, 3), bot, testLogger, false)

		// --- Act ---
		rep := uc.Handle(ctx, incoming("drugs"))

		// --- Assert ---
		if rep.AlertsSent != 2 || rep.AlertsFailed != 1 {
			t.Errorf("expected 2 sent / 1 failed, got %+v", rep)
		}
		if len(bot.Alerts) != 2 || bot.Alerts[1].ChatID != 3 {
			t.Errorf("unexpected deliveries %+v", bot.Alerts)
		}
	})

	t.Run("registry read failure sends no alerts", func(t *testing.T) {
		bot := &MockTelegramBot{}
		admins := NewMockAlertAdminRepo()
		admins.LoadFunc = func(context.Context) ([]int64, error) { return nil, errors.New("corrupt file") }
		uc := usecase.NewIngestUseCase(verdictOf(model.LabelSuspicious, 0.9), NewMockMessageRepo(), admins, bot, testLogger, false)

		rep := uc.Handle(ctx, incoming("terror"))

		if !rep.Flagged || rep.AlertsSent != 0 || len(bot.Alerts) != 0 {
			t.Errorf("unexpected report %+v", rep)
		}
		if !rep.Persisted || !rep.Replied {
			t.Errorf("earlier steps should have succeeded: %+v", rep)
		}
	})

	t.Run("typing and reply failures are swallowed", func(t *testing.T) {
		bot := &MockTelegramBot{
			SendTypingFunc:   func(context.Context, int64) error { return errors.New("timeout") },
			ReplyVerdictFunc: func(context.Context, int64, int, bool) error { return errors.New("forbidden") },
		}
		repo := NewMockMessageRepo()
		uc := usecase.NewIngestUseCase(verdictOf(model.LabelSafe, 0.1), repo, NewMockAlertAdminRepo(), bot, testLogger, false)

		rep := uc.Handle(ctx, incoming("hi"))

		if !rep.Persisted || rep.Replied {
			t.Errorf("unexpected report %+v", rep)
		}
	})

	t.Run("blank text is still classified, stored and acknowledged", func(t *testing.T) {
		// --- Arrange ---
		bot := &MockTelegramBot{}
		cls := &MockClassifier{ClassifyFunc: func(_ context.Context, text string) model.Verdict {
			return ai.KeywordVerdict(text)
		}}
		repo := NewMockMessageRepo()
		uc := usecase.NewIngestUseCase(cls, repo, NewMockAlertAdminRepo(1), bot, testLogger, false)

		// --- Act ---
		rep := uc.Handle(ctx, incoming("   "))

		// --- Assert ---
		if len(cls.Texts) != 1 || cls.Texts[0] != "   " {
			t.Fatalf("classifier calls = %q", cls.Texts)
		}
		if !rep.Persisted || !rep.Replied || rep.Flagged {
			t.Errorf("unexpected report %+v", rep)
		}
		if len(repo.Saved) != 1 || repo.Saved[0].Label != model.LabelSafe || repo.Saved[0].Score != 0.1 {
			t.Errorf("unexpected stored rows %+v", repo.Saved)
		}
		if len(bot.Alerts) != 0 {
			t.Errorf("blank message must not alert, got %d", len(bot.Alerts))
		}
	})
}
