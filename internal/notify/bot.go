package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dublimator.xyz/paned/internal/store"
)

// RunBot serves the bot command surface until ctx is cancelled. The event log
// backs the /get_dos_data report.
func (n *Notifier) RunBot(ctx context.Context, events *store.EventLog) error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "get_chat_id", Description: "Show your chat id"},
		tgbotapi.BotCommand{Command: "get_dos_data", Description: "Show recorded DoS incidents"},
	)
	if _, err := n.bot.Request(commands); err != nil {
		return fmt.Errorf("notify: set bot commands: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := n.bot.GetUpdatesChan(u)

	n.logger.Info("telegram bot started")
	if err := n.send(ctx, "Monitoring active"); err != nil {
		n.logger.WithError(err).Warn("failed to announce startup")
	}

	for {
		select {
		case <-ctx.Done():
			n.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			n.handleCommand(ctx, update.Message, events)
		}
	}
}

func (n *Notifier) handleCommand(ctx context.Context, msg *tgbotapi.Message, events *store.EventLog) {
	switch msg.Command() {
	case "get_chat_id":
		n.reply(msg.Chat.ID, fmt.Sprintf("Your chat_id: %d", msg.Chat.ID))

	case "get_dos_data":
		// Incident data only goes to the configured alert channel.
		if msg.Chat.ID != n.chatID {
			n.reply(msg.Chat.ID, "Cannot send data to this channel")
			return
		}
		records, err := events.Snapshot(ctx)
		if err != nil {
			n.logger.WithError(err).Error("failed to load incident data")
			n.reply(msg.Chat.ID, "Failed to load incident data")
			return
		}
		for _, part := range renderIncidentReport(records, telegramMessageLimit) {
			n.reply(msg.Chat.ID, part)
		}
	}
}

func (n *Notifier) reply(chatID int64, text string) {
	if _, err := n.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		n.logger.WithError(err).Error("failed to send reply")
	}
}
