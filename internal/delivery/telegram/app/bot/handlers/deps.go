// internal/delivery/telegram/app/bot/handlers/deps.go
package handlers

import (
	"context"

	"subscription-group-bot/internal/core/domain/payment"
	"subscription-group-bot/internal/core/domain/subscription"
	"subscription-group-bot/internal/infrastructure/persistence/postgres/models"
)

// PlanCatalog каталог тарифных планов
type PlanCatalog interface {
	All() []subscription.Plan
	Get(name string) (subscription.Plan, error)
}

// CheckoutStarter инициирует оплату выбранного плана
type CheckoutStarter interface {
	StartCheckout(ctx context.Context, chatID int64, username string, plan subscription.Plan) (*payment.InitiateResult, error)
}

// SubscriptionReader читает подписку чата, nil без ошибки если подписки нет
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, chatID int64) (*models.Subscription, error)
}
