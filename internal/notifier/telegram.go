package notifier

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

// Min interval between any two Telegram sends to avoid 429 Too Many
// Requests (~30 messages/min bot limit).
const telegramSendInterval = 2 * time.Second

// TelegramNotifier sends live updates to Telegram chats. The subscription
// target is the chat id.
type TelegramNotifier struct {
	bot      *tgbotapi.BotAPI
	mu       sync.Mutex
	lastSend time.Time
}

var _ contracts.NotificationSink = (*TelegramNotifier)(nil)

// NewTelegramNotifier creates a notifier from a bot token.
func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot}, nil
}

// Send implements NotificationSink.
func (t *TelegramNotifier) Send(ctx context.Context, sub models.Subscription, message string) error {
	chatID, err := strconv.ParseInt(sub.Target, 10, 64)
	if err != nil {
		return fmt.Errorf("subscription %s: bad telegram chat id %q: %w", sub.ID, sub.Target, err)
	}

	t.throttle(ctx)

	msg := tgbotapi.NewMessage(chatID, message)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message to %d: %w", chatID, err)
	}
	return nil
}

// throttle spaces sends out so the bot stays under Telegram's rate limit.
// The reservation never lands in the past: after an idle stretch the next
// send goes immediately and subsequent ones still wait a full interval.
func (t *TelegramNotifier) throttle(ctx context.Context) {
	t.mu.Lock()
	now := time.Now()
	wait := telegramSendInterval - now.Sub(t.lastSend)
	if wait <= 0 {
		t.lastSend = now
		t.mu.Unlock()
		return
	}
	t.lastSend = now.Add(wait)
	t.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}
