package services

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier шлёт уведомления о новых подписчиках в админ-чат.
// Best-effort: ошибки доставки только логируются.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	log.Printf("[tg] authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) NotifyNewSubscriber(email string, subscribedAt time.Time) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	text := fmt.Sprintf("New subscriber: %s (%s)", email, subscribedAt.Format("02.01.2006 15:04"))
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][notify] send failed: %v", err)
	}
}
