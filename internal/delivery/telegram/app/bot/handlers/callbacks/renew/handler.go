// internal/delivery/telegram/app/bot/handlers/callbacks/renew/handler.go
package renew

import (
	"context"

	"subscription-group-bot/internal/delivery/telegram/app/bot/buttons"
	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/base"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/commands/plans"
	"subscription-group-bot/pkg/logger"
)

// renewHandler кнопка продления из сообщения об истечении
type renewHandler struct {
	*base.BaseHandler
	catalog handlers.PlanCatalog
	buttons *buttons.ButtonBuilder
}

// NewHandler создает обработчик продления
func NewHandler(catalog handlers.PlanCatalog, builder *buttons.ButtonBuilder) handlers.Handler {
	return &renewHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "renew_handler",
			Command: string(constants.ActionRenew),
			Type:    handlers.TypeCallback,
		},
		catalog: catalog,
		buttons: builder,
	}
}

// Execute запускает выбор плана для чата, нажавшего кнопку
func (h *renewHandler) Execute(_ context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	if params.Action.ChatID != params.ChatID {
		logger.Warn("⚠️ Кнопка продления для чата %d нажата в чате %d", params.Action.ChatID, params.ChatID)
	}
	logger.Info("🔁 Продление подписки для чата %d", params.ChatID)

	return plans.Result(h.catalog, h.buttons, constants.Messages.ChoosePlan), nil
}
