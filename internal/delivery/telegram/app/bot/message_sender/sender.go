// internal/delivery/telegram/app/bot/message_sender/sender.go
package message_sender

import (
	"context"
	"fmt"

	"subscription-group-bot/internal/metrics"
	"subscription-group-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotAPI часть *tgbotapi.BotAPI, нужная для отправки
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MessageSender интерфейс для отправки сообщений
type MessageSender interface {
	SendTextMessage(ctx context.Context, chatID int64, text string, keyboard interface{}) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	Request(ctx context.Context, c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MessageSenderImpl реализация MessageSender
type MessageSenderImpl struct {
	api         BotAPI
	rateLimiter *RateLimiter
}

// NewMessageSender создает новый MessageSender. ratePerSecond <= 0 без ограничения
func NewMessageSender(api BotAPI, ratePerSecond float64) *MessageSenderImpl {
	return &MessageSenderImpl{
		api:         api,
		rateLimiter: NewRateLimiter(ratePerSecond),
	}
}

// SendTextMessage отправляет текст с необязательной клавиатурой
func (ms *MessageSenderImpl) SendTextMessage(ctx context.Context, chatID int64, text string, keyboard interface{}) error {
	if err := ms.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}

	if _, err := ms.api.Send(msg); err != nil {
		metrics.TelegramSendErrorsTotal.Inc()
		return fmt.Errorf("ошибка отправки сообщения в чат %d: %w", chatID, err)
	}

	logger.Debug("📤 Сообщение отправлено в чат %d", chatID)
	return nil
}

// AnswerCallback подтверждает нажатие inline-кнопки
func (ms *MessageSenderImpl) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if callbackID == "" {
		return nil
	}
	if _, err := ms.Request(ctx, tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("ошибка ответа на callback %s: %w", callbackID, err)
	}
	return nil
}

// Request выполняет произвольный запрос к API с учетом ограничения частоты
func (ms *MessageSenderImpl) Request(ctx context.Context, c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := ms.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := ms.api.Request(c)
	if err != nil {
		metrics.TelegramSendErrorsTotal.Inc()
		return nil, err
	}
	return resp, nil
}

var _ MessageSender = (*MessageSenderImpl)(nil)
