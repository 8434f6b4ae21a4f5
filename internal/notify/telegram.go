package notify

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramSender delivers a message to one Telegram chat.
type TelegramSender interface {
	Send(chatID, text string) error
}

type telegramSender struct {
	bot *tgbotapi.BotAPI
}

// NewTelegram builds a sender over the Telegram Bot API.
func NewTelegram(botToken string) (TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	return &telegramSender{bot: bot}, nil
}

func (s *telegramSender) Send(chatID, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	if _, err := s.bot.Send(tgbotapi.NewMessage(id, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	return nil
}
