// Package notify implements alert delivery through a Telegram bot, plus the
// bot command surface for on-demand incident reports.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dublimator.xyz/paned/internal/config"
	"dublimator.xyz/paned/internal/dos"
	"dublimator.xyz/paned/internal/log"
)

// telegramMessageLimit is the hard cap Telegram enforces per message.
const telegramMessageLimit = 4096

// Notifier renders and delivers alerts. Send failures are logged by callers
// and never retried.
type Notifier struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	settings *config.SettingsStore
	logger   log.Logger
}

// New connects to the Telegram Bot API. The token is verified by the initial
// getMe call the client performs.
func New(cfg config.TelegramConfig, settings *config.SettingsStore) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("notify: connect bot: %w", err)
	}
	return &Notifier{
		bot:      bot,
		chatID:   cfg.ChatID,
		settings: settings,
		logger:   log.GetLogger().WithField("component", "notify"),
	}, nil
}

// Notify implements dos.NotifySink: one rendered message per incident batch,
// gated on the dos alert toggle. Messages above the Telegram limit are split
// on incident boundaries.
func (n *Notifier) Notify(ctx context.Context, batch []dos.Incident) error {
	if len(batch) == 0 {
		return nil
	}
	if !n.settings.Get().DOS.Condition {
		return nil
	}
	for _, part := range renderIncidentBatch(batch, telegramMessageLimit) {
		if err := n.send(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

// NotifyCPU alerts on high CPU load when enabled and above the threshold.
func (n *Notifier) NotifyCPU(ctx context.Context, usagePercent float64) error {
	s := n.settings.Get().CPU
	if !s.Condition || usagePercent < float64(s.Percent) {
		return nil
	}
	return n.send(ctx, fmt.Sprintf("⚠️ High CPU load: %.0f%%", usagePercent))
}

// NotifyRAM alerts on RAM usage when enabled and above the threshold.
func (n *Notifier) NotifyRAM(ctx context.Context, usagePercent float64) error {
	s := n.settings.Get().RAM
	if !s.Condition || usagePercent < float64(s.Percent) {
		return nil
	}
	return n.send(ctx, fmt.Sprintf("⚠️ High RAM usage: %.0f%%", usagePercent))
}

// NotifyStorage alerts on disk usage when enabled and above the threshold.
func (n *Notifier) NotifyStorage(ctx context.Context, usagePercent float64) error {
	s := n.settings.Get().Storage
	if !s.Condition || usagePercent < float64(s.Percent) {
		return nil
	}
	return n.send(ctx, fmt.Sprintf("⚠️ Storage almost full: %.0f%%", usagePercent))
}

// NotifyContainerStopped alerts when a previously running container is gone.
func (n *Notifier) NotifyContainerStopped(ctx context.Context, containerName string) error {
	if !n.settings.Get().ContainerStopped.Condition {
		return nil
	}
	return n.send(ctx, fmt.Sprintf("🚨 Container stopped: %s", containerName))
}

// NotifyTest sends an unconditional test message.
func (n *Notifier) NotifyTest(ctx context.Context) error {
	return n.send(ctx, "Test message")
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("notify: send message: %w", err)
	}
	return nil
}
