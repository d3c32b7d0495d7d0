// internal/delivery/telegram/app/bot/handlers/commands/help/handler.go
package help

import (
	"context"

	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/base"
)

// helpHandler подсказка по использованию бота, состояние не меняет
type helpHandler struct {
	*base.BaseHandler
}

// NewHandler хэндлер команды /help
func NewHandler() handlers.Handler {
	return &helpHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "help_handler",
			Command: constants.Commands.Help,
			Type:    handlers.TypeCommand,
		},
	}
}

// NewFallbackHandler хэндлер любого нераспознанного текста
func NewFallbackHandler() handlers.Handler {
	return &helpHandler{
		BaseHandler: &base.BaseHandler{
			Name: "unknown_text_handler",
			Type: handlers.TypeMessage,
		},
	}
}

// Execute возвращает подсказку
func (h *helpHandler) Execute(_ context.Context, _ handlers.HandlerParams) (handlers.HandlerResult, error) {
	return handlers.HandlerResult{Message: constants.Messages.Guidance}, nil
}
