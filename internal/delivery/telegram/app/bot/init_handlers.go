// internal/delivery/telegram/app/bot/init_handlers.go
package bot

import (
	"subscription-group-bot/internal/delivery/telegram/app/bot/buttons"
	"subscription-group-bot/internal/delivery/telegram/app/bot/formatters"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/callbacks/cancel"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/callbacks/renew"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/callbacks/select_plan"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/commands/help"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/commands/plans"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/commands/status"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/router"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/start"
	"subscription-group-bot/pkg/logger"
)

// RegisterAllHandlers создает роутер со всеми хэндлерами бота
func RegisterAllHandlers(deps Dependencies, builder *buttons.ButtonBuilder, formatter *formatters.SubscriptionFormatter) router.Router {
	r := router.NewRouter()

	// Команды
	r.RegisterHandler(start.NewHandler(builder))
	r.RegisterHandler(plans.NewCommandHandler(deps.Catalog, builder))
	r.RegisterHandler(status.NewCommandHandler(deps.Subscriptions, formatter))
	r.RegisterHandler(help.NewHandler())

	// Кнопки постоянной клавиатуры
	r.RegisterHandler(plans.NewJoinHandler(deps.Catalog, builder))
	r.RegisterHandler(status.NewButtonHandler(deps.Subscriptions, formatter))

	// Inline callbacks
	r.RegisterHandler(select_plan.NewHandler(deps.Catalog, deps.Checkout, builder, formatter))
	r.RegisterHandler(cancel.NewHandler())
	r.RegisterHandler(renew.NewHandler(deps.Catalog, builder))

	r.SetFallback(help.NewFallbackHandler())

	logger.Info("✅ Зарегистрировано команд: %d", len(r.GetCommands()))
	return r
}
