// internal/delivery/telegram/app/bot/handlers/callbacks/cancel/handler.go
package cancel

import (
	"context"

	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/conversation"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/base"
	"subscription-group-bot/pkg/logger"
)

// cancelHandler отмена ожидающего платежа. Хранилище подписок не трогает
type cancelHandler struct {
	*base.BaseHandler
}

// NewHandler создает обработчик отмены
func NewHandler() handlers.Handler {
	return &cancelHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "cancel_payment_handler",
			Command: string(constants.ActionCancel),
			Type:    handlers.TypeCallback,
		},
	}
}

// Execute возвращает диалог в idle
func (h *cancelHandler) Execute(_ context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	if params.Session.Reference != "" && params.Session.Reference != params.Action.Reference {
		logger.Debug("Отмена платежа %s в чате %d, ожидался %s",
			params.Action.Reference, params.ChatID, params.Session.Reference)
	}
	logger.Info("🚫 Чат %d отменил платеж %s", params.ChatID, params.Action.Reference)

	return handlers.HandlerResult{
		Message:  constants.Messages.PaymentCancelled,
		NextStep: handlers.Step(conversation.StateIdle),
	}, nil
}
