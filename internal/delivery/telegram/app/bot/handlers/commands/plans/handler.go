// internal/delivery/telegram/app/bot/handlers/commands/plans/handler.go
package plans

import (
	"context"

	"subscription-group-bot/internal/delivery/telegram/app/bot/buttons"
	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/conversation"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/base"
)

// plansHandler показывает тарифные планы
type plansHandler struct {
	*base.BaseHandler
	catalog handlers.PlanCatalog
	buttons *buttons.ButtonBuilder
}

// NewCommandHandler хэндлер команды /plans
func NewCommandHandler(catalog handlers.PlanCatalog, builder *buttons.ButtonBuilder) handlers.Handler {
	return newHandler("plans_command_handler", constants.Commands.Plans, handlers.TypeCommand, catalog, builder)
}

// NewJoinHandler хэндлер кнопки "Join Private Group"
func NewJoinHandler(catalog handlers.PlanCatalog, builder *buttons.ButtonBuilder) handlers.Handler {
	return newHandler("join_group_handler", constants.ButtonTexts.JoinGroup, handlers.TypeMessage, catalog, builder)
}

func newHandler(name, command string, handlerType handlers.HandlerType, catalog handlers.PlanCatalog, builder *buttons.ButtonBuilder) handlers.Handler {
	return &plansHandler{
		BaseHandler: &base.BaseHandler{
			Name:    name,
			Command: command,
			Type:    handlerType,
		},
		catalog: catalog,
		buttons: builder,
	}
}

// Execute отправляет список планов
func (h *plansHandler) Execute(_ context.Context, _ handlers.HandlerParams) (handlers.HandlerResult, error) {
	return Result(h.catalog, h.buttons, constants.Messages.ChoosePlan), nil
}

// Result ответ со списком планов, переводит диалог в выбор плана
func Result(catalog handlers.PlanCatalog, builder *buttons.ButtonBuilder, message string) handlers.HandlerResult {
	return handlers.HandlerResult{
		Message:  message,
		Keyboard: builder.PlansKeyboard(catalog.All()),
		NextStep: handlers.Step(conversation.StatePlanSelection),
	}
}
