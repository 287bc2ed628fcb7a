// internal/notify/telegram.go
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram returns a channel that pushes alerts to a Telegram chat. The
// bot token and chat id come from config; alerts fail silently into the
// registry's warning log when Telegram is unreachable.
func Telegram(token string, chatID int64) (Channel, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return func(alert Alert) error {
		msg := tgbotapi.NewMessage(chatID, alert.Message())
		if _, err := bot.Send(msg); err != nil {
			return fmt.Errorf("send telegram alert: %w", err)
		}
		return nil
	}, nil
}
