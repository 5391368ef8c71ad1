package alerts

import (
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between any two Telegram messages to the same chat to avoid
// 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

// TelegramSink delivers alert lines to a Telegram chat. The notifier's
// cooldown already dedupes; this only paces outbound sends.
type TelegramSink struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegramSink creates the sink and verifies the token against the API.
func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("verify telegram bot: %w", err)
	}

	return &TelegramSink{bot: bot, chatID: chatID}, nil
}

// Send posts one message, sleeping out the remaining rate-limit window if
// the last send was too recent.
func (s *TelegramSink) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if wait := telegramSendInterval - time.Since(s.lastSend); wait > 0 {
		time.Sleep(wait)
	}

	msg := tgbotapi.NewMessage(s.chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	s.lastSend = time.Now()
	return nil
}
