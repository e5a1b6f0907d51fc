// Package alert pushes a Telegram notification when the team mood
// drops into an alerting band.
package alert

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/kmatsu/vibecheck/internal/config"
	"github.com/kmatsu/vibecheck/internal/mood"
)

// TelegramSender is the slice of the bot API the notifier needs
// (allows mocking in tests).
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BotFactory creates TelegramSender instances (allows mocking).
type BotFactory func(token string) (TelegramSender, error)

var defaultBotFactory BotFactory = func(token string) (TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return bot, nil
}

// Notifier sends one message per downward transition: when the label
// moves from a non-alerting band into Chaos or Stressed. Staying inside
// an alerting band across refreshes stays quiet.
type Notifier struct {
	bot    TelegramSender
	chatID int64
	log    zerolog.Logger

	mu        sync.Mutex
	lastLabel string
}

func NewNotifier(cfg config.TelegramAlertConfig, log zerolog.Logger) (*Notifier, error) {
	return NewNotifierWithFactory(cfg, log, defaultBotFactory)
}

// NewNotifierWithFactory creates a Notifier with a custom bot factory
// for testing.
func NewNotifierWithFactory(cfg config.TelegramAlertConfig, log zerolog.Logger, factory BotFactory) (*Notifier, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram alert token is required")
	}
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram alert chat id is required")
	}
	bot, err := factory(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: cfg.ChatID, log: log}, nil
}

// Observe inspects a fresh report and fires the alert on a downward
// transition. Safe for concurrent use.
func (n *Notifier) Observe(report *mood.Report) {
	if report == nil {
		return
	}

	n.mu.Lock()
	prev := n.lastLabel
	n.lastLabel = report.MoodLabel
	n.mu.Unlock()

	if !alerting(report.MoodLabel) || alerting(prev) {
		return
	}

	text := fmt.Sprintf("Mood alert: the team dropped to %s (%d/100). %s",
		report.MoodLabel, report.MoodScore, report.Summary)
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.log.Warn().Err(err).Msg("telegram alert send failed")
		return
	}
	n.log.Info().Str("mood_label", report.MoodLabel).Msg("telegram alert sent")
}

func alerting(label string) bool {
	return label == mood.LabelChaos || label == mood.LabelStressed
}
