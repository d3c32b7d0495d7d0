// internal/infrastructure/persistence/postgres/models/subscription.go
package models

import "time"

// Subscription запись о подписке пользователя (одна на чат)
type Subscription struct {
	ChatID    int64     `db:"telegram_chat_id" json:"telegram_chat_id"`
	PlanName  string    `db:"subscription_type" json:"subscription_type"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Reference string    `db:"payment_reference" json:"payment_reference"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
