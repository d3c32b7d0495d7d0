// internal/delivery/telegram/app/bot/handlers/start/handler.go
package start

import (
	"context"

	"subscription-group-bot/internal/delivery/telegram/app/bot/buttons"
	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/conversation"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/base"
	"subscription-group-bot/pkg/logger"
)

// startHandlerImpl реализация хэндлера /start
type startHandlerImpl struct {
	*base.BaseHandler
	buttons *buttons.ButtonBuilder
}

// NewHandler создает новый хэндлер команды /start
func NewHandler(builder *buttons.ButtonBuilder) handlers.Handler {
	return &startHandlerImpl{
		BaseHandler: &base.BaseHandler{
			Name:    "start_handler",
			Command: constants.Commands.Start,
			Type:    handlers.TypeCommand,
		},
		buttons: builder,
	}
}

// Execute показывает приветствие и постоянную клавиатуру
func (h *startHandlerImpl) Execute(_ context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	logger.Debug("Обработка /start для чата %d", params.ChatID)

	return handlers.HandlerResult{
		Message:  constants.Messages.Welcome,
		Keyboard: h.buttons.MainMenuKeyboard(),
		NextStep: handlers.Step(conversation.StateIdle),
	}, nil
}
