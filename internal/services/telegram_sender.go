package services

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// TelegramSender posts notifications to a single chat.
type TelegramSender struct {
	bot    *bot.Bot
	chatID int64
}

func NewTelegramSender(token string, chatID int64, options ...bot.Option) (*TelegramSender, error) {
	client, err := bot.New(token, options...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSender{bot: client, chatID: chatID}, nil
}

func (sender *TelegramSender) Send(ctx context.Context, text string) error {
	if _, err := sender.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: sender.chatID,
		Text:   text,
	}); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
