// internal/delivery/telegram/app/bot/handlers/commands/status/handler.go
package status

import (
	"context"

	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/conversation"
	"subscription-group-bot/internal/delivery/telegram/app/bot/formatters"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/base"
	"subscription-group-bot/pkg/logger"
)

// statusHandler сообщает дату окончания подписки
type statusHandler struct {
	*base.BaseHandler
	reader    handlers.SubscriptionReader
	formatter *formatters.SubscriptionFormatter
}

// NewCommandHandler хэндлер команды /status
func NewCommandHandler(reader handlers.SubscriptionReader, formatter *formatters.SubscriptionFormatter) handlers.Handler {
	return newHandler("status_command_handler", constants.Commands.Status, handlers.TypeCommand, reader, formatter)
}

// NewButtonHandler хэндлер кнопки "Subscription Status"
func NewButtonHandler(reader handlers.SubscriptionReader, formatter *formatters.SubscriptionFormatter) handlers.Handler {
	return newHandler("status_button_handler", constants.ButtonTexts.SubscriptionStatus, handlers.TypeMessage, reader, formatter)
}

func newHandler(name, command string, handlerType handlers.HandlerType, reader handlers.SubscriptionReader, formatter *formatters.SubscriptionFormatter) handlers.Handler {
	return &statusHandler{
		BaseHandler: &base.BaseHandler{
			Name:    name,
			Command: command,
			Type:    handlerType,
		},
		reader:    reader,
		formatter: formatter,
	}
}

// Execute читает подписку и форматирует дату окончания
func (h *statusHandler) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	sub, err := h.reader.GetSubscription(ctx, params.ChatID)
	if err != nil {
		logger.Error("❌ Ошибка получения подписки для чата %d: %v", params.ChatID, err)
		return handlers.HandlerResult{
			Message:  constants.Messages.StatusFailed,
			NextStep: handlers.Step(conversation.StateIdle),
		}, nil
	}

	return handlers.HandlerResult{
		Message:  h.formatter.Status(sub),
		NextStep: handlers.Step(conversation.StateIdle),
	}, nil
}
