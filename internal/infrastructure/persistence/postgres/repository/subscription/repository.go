// internal/infrastructure/persistence/postgres/repository/subscription/repository.go
package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"subscription-group-bot/internal/infrastructure/persistence/postgres/models"

	"github.com/jmoiron/sqlx"
)

// SubscriptionRepository интерфейс хранилища подписок
type SubscriptionRepository interface {
	GetByChatID(ctx context.Context, chatID int64) (*models.Subscription, error)
	Upsert(ctx context.Context, sub *models.Subscription) error
	DeleteExpired(ctx context.Context, chatID int64, cutoff time.Time) (bool, error)
	ListExpired(ctx context.Context, now time.Time) ([]*models.Subscription, error)
	Count(ctx context.Context) (int, error)
}

// subscriptionRepositoryImpl реализация SubscriptionRepository
type subscriptionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSubscriptionRepository создает новый репозиторий подписок
func NewSubscriptionRepository(db *sqlx.DB) SubscriptionRepository {
	return &subscriptionRepositoryImpl{db: db}
}

const selectColumns = `
	telegram_chat_id, subscription_type, start_date, end_date,
	payment_reference, username, created_at, updated_at`

// GetByChatID получает подписку чата, nil если записи нет
func (r *subscriptionRepositoryImpl) GetByChatID(ctx context.Context, chatID int64) (*models.Subscription, error) {
	query := `SELECT` + selectColumns + `
	FROM subscriptions
	WHERE telegram_chat_id = $1`

	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, chatID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения подписки чата %d: %w", chatID, err)
	}

	return &sub, nil
}

// Upsert создает или полностью заменяет подписку чата
func (r *subscriptionRepositoryImpl) Upsert(ctx context.Context, sub *models.Subscription) error {
	query := `
	INSERT INTO subscriptions (
		telegram_chat_id, subscription_type, start_date, end_date,
		payment_reference, username
	) VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (telegram_chat_id) DO UPDATE SET
		subscription_type = EXCLUDED.subscription_type,
		start_date = EXCLUDED.start_date,
		end_date = EXCLUDED.end_date,
		payment_reference = EXCLUDED.payment_reference,
		username = EXCLUDED.username,
		updated_at = NOW()
	RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		sub.ChatID,
		sub.PlanName,
		sub.StartDate,
		sub.EndDate,
		sub.Reference,
		sub.Username,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("ошибка сохранения подписки чата %d: %w", sub.ChatID, err)
	}

	return nil
}

// DeleteExpired удаляет подписку чата, только если end_date <= cutoff.
// false означает, что записи нет или она уже продлена
func (r *subscriptionRepositoryImpl) DeleteExpired(ctx context.Context, chatID int64, cutoff time.Time) (bool, error) {
	query := `DELETE FROM subscriptions WHERE telegram_chat_id = $1 AND end_date <= $2`

	res, err := r.db.ExecContext(ctx, query, chatID, cutoff)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления подписки чата %d: %w", chatID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка удаления подписки чата %d: %w", chatID, err)
	}
	return affected > 0, nil
}

// ListExpired получает подписки с end_date <= now
func (r *subscriptionRepositoryImpl) ListExpired(ctx context.Context, now time.Time) ([]*models.Subscription, error) {
	query := `SELECT` + selectColumns + `
	FROM subscriptions
	WHERE end_date <= $1
	ORDER BY end_date ASC`

	var subs []*models.Subscription
	if err := r.db.SelectContext(ctx, &subs, query, now); err != nil {
		return nil, fmt.Errorf("ошибка получения истекших подписок: %w", err)
	}

	return subs, nil
}

// Count количество записей о подписках
func (r *subscriptionRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subscriptions`); err != nil {
		return 0, fmt.Errorf("ошибка подсчета подписок: %w", err)
	}
	return count, nil
}
