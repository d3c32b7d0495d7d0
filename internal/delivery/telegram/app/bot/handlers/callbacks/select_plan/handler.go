// internal/delivery/telegram/app/bot/handlers/callbacks/select_plan/handler.go
package select_plan

import (
	"context"
	"errors"

	"subscription-group-bot/internal/core/domain/subscription"
	"subscription-group-bot/internal/delivery/telegram/app/bot/buttons"
	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/conversation"
	"subscription-group-bot/internal/delivery/telegram/app/bot/formatters"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/base"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/commands/plans"
	"subscription-group-bot/pkg/logger"
)

// selectPlanHandler обработчик выбора плана
type selectPlanHandler struct {
	*base.BaseHandler
	catalog   handlers.PlanCatalog
	checkout  handlers.CheckoutStarter
	buttons   *buttons.ButtonBuilder
	formatter *formatters.SubscriptionFormatter
}

// NewHandler создает обработчик выбора плана
func NewHandler(catalog handlers.PlanCatalog, checkout handlers.CheckoutStarter, builder *buttons.ButtonBuilder, formatter *formatters.SubscriptionFormatter) handlers.Handler {
	return &selectPlanHandler{
		BaseHandler: &base.BaseHandler{
			Name:    "select_plan_handler",
			Command: string(constants.ActionSelectPlan),
			Type:    handlers.TypeCallback,
		},
		catalog:   catalog,
		checkout:  checkout,
		buttons:   builder,
		formatter: formatter,
	}
}

// Execute создает платеж и возвращает ссылку на оплату
func (h *selectPlanHandler) Execute(ctx context.Context, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	plan, err := h.catalog.Get(params.Action.Plan)
	if err != nil {
		if errors.Is(err, subscription.ErrUnknownPlan) {
			logger.Warn("⚠️ Чат %d выбрал неизвестный план %q", params.ChatID, params.Action.Plan)
			return plans.Result(h.catalog, h.buttons, constants.Messages.UnknownPlan), nil
		}
		return handlers.HandlerResult{}, err
	}

	result, err := h.checkout.StartCheckout(ctx, params.ChatID, h.DisplayName(params), plan)
	if err != nil {
		return handlers.HandlerResult{
			Message:  constants.Messages.PaymentFailed,
			NextStep: handlers.Step(conversation.StateIdle),
			Metadata: map[string]interface{}{"plan": plan.Name, "error": err.Error()},
		}, nil
	}

	return handlers.HandlerResult{
		Message:  h.formatter.Checkout(plan),
		Keyboard: h.buttons.CheckoutKeyboard(result.AuthorizationURL, result.Reference),
		NextStep: &conversation.Session{
			State:     conversation.StateAwaitingPayment,
			Plan:      plan.Name,
			Reference: result.Reference,
		},
		Metadata: map[string]interface{}{"plan": plan.Name, "reference": result.Reference},
	}, nil
}
