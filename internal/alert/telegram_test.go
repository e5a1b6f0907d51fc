package alert

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/kmatsu/vibecheck/internal/config"
	"github.com/kmatsu/vibecheck/internal/mood"
)

type mockSender struct {
	sent []tgbotapi.Chattable
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sent = append(m.sent, c)
	return tgbotapi.Message{}, nil
}

func newTestNotifier(t *testing.T) (*Notifier, *mockSender) {
	t.Helper()
	sender := &mockSender{}
	n, err := NewNotifierWithFactory(
		config.TelegramAlertConfig{Enabled: true, Token: "test-token", ChatID: 42},
		zerolog.Nop(),
		func(string) (TelegramSender, error) { return sender, nil },
	)
	if err != nil {
		t.Fatalf("NewNotifierWithFactory error: %v", err)
	}
	return n, sender
}

func report(label string, score int) *mood.Report {
	return &mood.Report{Analysis: mood.Analysis{MoodScore: score, MoodLabel: label, Summary: "s"}}
}

func TestObserveFiresOnDownwardTransition(t *testing.T) {
	n, sender := newTestNotifier(t)

	n.Observe(report(mood.LabelGood, 70))
	if len(sender.sent) != 0 {
		t.Fatal("no alert expected for a good mood")
	}

	n.Observe(report(mood.LabelStressed, 30))
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1 after dropping to Stressed", len(sender.sent))
	}

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", sender.sent[0])
	}
	if msg.ChatID != 42 {
		t.Fatalf("chat id = %d, want 42", msg.ChatID)
	}
}

func TestObserveStaysQuietInsideAlertingBand(t *testing.T) {
	n, sender := newTestNotifier(t)

	n.Observe(report(mood.LabelStressed, 35))
	n.Observe(report(mood.LabelStressed, 32))
	n.Observe(report(mood.LabelChaos, 10))

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want a single alert for the initial drop", len(sender.sent))
	}
}

func TestObserveFiresAgainAfterRecovery(t *testing.T) {
	n, sender := newTestNotifier(t)

	n.Observe(report(mood.LabelChaos, 5))
	n.Observe(report(mood.LabelNeutral, 50))
	n.Observe(report(mood.LabelStressed, 25))

	if len(sender.sent) != 2 {
		t.Fatalf("sent = %d, want one alert per downward transition", len(sender.sent))
	}
}

func TestNotifierConfigValidation(t *testing.T) {
	log := zerolog.Nop()
	factory := func(string) (TelegramSender, error) { return &mockSender{}, nil }

	if _, err := NewNotifierWithFactory(config.TelegramAlertConfig{ChatID: 42}, log, factory); err == nil {
		t.Fatal("expected error for missing token")
	}
	if _, err := NewNotifierWithFactory(config.TelegramAlertConfig{Token: "x"}, log, factory); err == nil {
		t.Fatal("expected error for missing chat id")
	}
}
