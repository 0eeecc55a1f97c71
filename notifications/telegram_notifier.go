package notifications

import (
	"fmt"
	"sync"
	"time"

	"gitlab.com/aoterocom/AORiskTrader/config"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	tb "gopkg.in/tucnak/telebot.v2"
)

// TelegramNotifier sends notifications to a telegram chat
type TelegramNotifier struct {
	token  string
	chatID string
	once   sync.Once
	bot    *tb.Bot
	chat   *tb.Chat
	err    error
}

func NewTelegramNotifier(token string, chatID string) *TelegramNotifier {
	return &TelegramNotifier{token: token, chatID: chatID}
}

func (telegramNotifier *TelegramNotifier) connect() {
	telegramNotifier.bot, telegramNotifier.err = tb.NewBot(tb.Settings{
		Token:  telegramNotifier.token,
		Poller: &tb.LongPoller{Timeout: 10 * time.Second},
	})
	if telegramNotifier.err != nil {
		return
	}
	telegramNotifier.chat, telegramNotifier.err = telegramNotifier.bot.ChatByID(telegramNotifier.chatID)
}

func (telegramNotifier *TelegramNotifier) Notify(message string) error {
	telegramNotifier.once.Do(telegramNotifier.connect)
	if telegramNotifier.err != nil {
		return fmt.Errorf("telegram: %w", telegramNotifier.err)
	}
	_, err := telegramNotifier.bot.Send(telegramNotifier.chat, message)
	return err
}

// LogNotifier writes notifications to the application log
type LogNotifier struct{}

func (LogNotifier) Notify(message string) error {
	helpers.Logger.Infoln(message)
	return nil
}

// NewNotifier returns the telegram notifier when enabled, a LogNotifier otherwise
func NewNotifier(cfg config.Telegram) interfaces.Notifier {
	if cfg.Enabled {
		return NewTelegramNotifier(cfg.Token, cfg.ChatID)
	}
	return LogNotifier{}
}
