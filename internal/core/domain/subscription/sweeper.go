// internal/core/domain/subscription/sweeper.go
package subscription

import (
	"context"
	"fmt"
	"sync"

	"subscription-group-bot/internal/metrics"
	"subscription-group-bot/pkg/logger"
)

// RenewalNotifier отправляет пользователю сообщение об истечении с кнопкой продления
type RenewalNotifier interface {
	SendRenewalPrompt(ctx context.Context, chatID int64) error
}

// GroupGate управляет членством в закрытой группе
type GroupGate interface {
	RevokeMembership(ctx context.Context, userID int64) error
}

// Sweeper удаляет истекшие подписки и исключает пользователей из группы
type Sweeper struct {
	service  *Service
	notifier RenewalNotifier
	gate     GroupGate
	mu       sync.Mutex
}

// NewSweeper создает sweeper
func NewSweeper(service *Service, notifier RenewalNotifier, gate GroupGate) *Sweeper {
	return &Sweeper{
		service:  service,
		notifier: notifier,
		gate:     gate,
	}
}

// Run обработчик для планировщика
func (sw *Sweeper) Run(ctx context.Context) error {
	_, err := sw.Sweep(ctx)
	return err
}

// Sweep один проход: уведомить, исключить и удалить каждую истекшую подписку.
// Ошибка одной записи не прерывает обработку остальных
func (sw *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	if !sw.mu.TryLock() {
		logger.Warn("⏭️ Предыдущий проход sweeper еще выполняется, пропускаем")
		return result, nil
	}
	defer sw.mu.Unlock()

	metrics.SweepRunsTotal.Inc()

	// Одна граница на весь проход: удаляем только то, что истекло к ней
	cutoff := sw.service.Now()

	expired, err := sw.service.ListExpired(ctx, cutoff)
	if err != nil {
		return result, fmt.Errorf("sweep: %w", err)
	}
	result.Expired = len(expired)

	if len(expired) == 0 {
		logger.Debug("🧹 Истекших подписок нет")
		return result, nil
	}

	logger.Info("🧹 Найдено истекших подписок: %d", len(expired))

	for _, sub := range expired {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		stillExpired, err := sw.service.IsStillExpired(ctx, sub.ChatID, cutoff)
		if err != nil {
			metrics.SweepFailuresTotal.WithLabelValues("recheck").Inc()
			logger.Error("❌ Не удалось перепроверить подписку чата %d: %v", sub.ChatID, err)
			continue
		}
		if !stillExpired {
			result.Renewed++
			logger.Info("🔄 Подписка чата %d продлена до очистки, пропускаем", sub.ChatID)
			continue
		}

		if err := sw.notifier.SendRenewalPrompt(ctx, sub.ChatID); err != nil {
			metrics.SweepFailuresTotal.WithLabelValues("notify").Inc()
			logger.Warn("⚠️ Не удалось уведомить чат %d об истечении: %v", sub.ChatID, err)
		} else {
			result.Notified++
		}

		if err := sw.gate.RevokeMembership(ctx, sub.ChatID); err != nil {
			metrics.SweepFailuresTotal.WithLabelValues("revoke").Inc()
			logger.Error("❌ Не удалось исключить пользователя %d из группы: %v", sub.ChatID, err)
		} else {
			result.Revoked++
		}

		deleted, err := sw.service.RemoveExpired(ctx, sub.ChatID, cutoff)
		if err != nil {
			metrics.SweepFailuresTotal.WithLabelValues("delete").Inc()
			logger.Error("❌ Не удалось удалить подписку чата %d: %v", sub.ChatID, err)
			continue
		}
		if !deleted {
			result.Renewed++
			logger.Warn("🔄 Подписка чата %d продлена во время очистки, запись сохранена", sub.ChatID)
			continue
		}
		result.Deleted++
		metrics.SweepRemovedTotal.Inc()
	}

	logger.Info("🧹 Sweep завершен: истекло %d, уведомлено %d, исключено %d, удалено %d, продлено %d",
		result.Expired, result.Notified, result.Revoked, result.Deleted, result.Renewed)
	return result, nil
}
