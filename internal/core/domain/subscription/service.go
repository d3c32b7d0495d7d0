// internal/core/domain/subscription/service.go
package subscription

import (
	"context"
	"fmt"
	"sync"
	"time"

	"subscription-group-bot/internal/infrastructure/persistence/postgres/models"
	"subscription-group-bot/internal/metrics"
	subscription_repo "subscription-group-bot/internal/infrastructure/persistence/postgres/repository/subscription"
	"subscription-group-bot/pkg/logger"
)

// Cache кэш статусов подписок (реализуется redis.Cache)
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// Config конфигурация сервиса
type Config struct {
	CacheTTL time.Duration
}

// Service сервис управления подписками
type Service struct {
	subRepo     subscription_repo.SubscriptionRepository
	cache       Cache
	cachePrefix string
	cacheTTL    time.Duration
	catalog     *Catalog
	now         func() time.Time

	// поколение кэша по чату, растет при каждой инвалидации
	genMu sync.Mutex
	gen   map[int64]uint64
}

// NewService создает новый сервис подписок. cache может быть nil
func NewService(subRepo subscription_repo.SubscriptionRepository, cache Cache, catalog *Catalog, config Config) *Service {
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &Service{
		subRepo:     subRepo,
		cache:       cache,
		cachePrefix: "subscription:",
		cacheTTL:    ttl,
		catalog:     catalog,
		now:         time.Now,
		gen:         make(map[int64]uint64),
	}
}

// Catalog возвращает каталог планов
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Activate создает или заменяет подписку после подтвержденного платежа.
// Конец периода = момент подтверждения + длительность плана
func (s *Service) Activate(ctx context.Context, req ActivateRequest) (*models.Subscription, error) {
	plan, err := s.catalog.Get(req.PlanName)
	if err != nil {
		return nil, err
	}

	existing, err := s.subRepo.GetByChatID(ctx, req.ChatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки текущей подписки: %w", err)
	}
	if existing != nil && req.Reference != "" && existing.Reference == req.Reference {
		return existing, ErrReferenceAlreadyApplied
	}

	now := s.now()
	sub := &models.Subscription{
		ChatID:    req.ChatID,
		PlanName:  plan.Name,
		StartDate: now,
		EndDate:   now.Add(plan.Duration),
		Reference: req.Reference,
		Username:  req.Username,
	}

	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("ошибка активации подписки: %w", err)
	}

	s.invalidateSubscriptionCache(ctx, req.ChatID)

	logger.Info("✅ Подписка активирована: чат %d, план %s, до %s",
		sub.ChatID, sub.PlanName, sub.EndDate.Format(time.RFC3339))
	return sub, nil
}

// GetSubscription возвращает подписку чата или nil
func (s *Service) GetSubscription(ctx context.Context, chatID int64) (*models.Subscription, error) {
	if s.cache != nil {
		var cached models.Subscription
		if err := s.cache.Get(ctx, s.cacheKey(chatID), &cached); err == nil {
			return &cached, nil
		}
	}

	gen := s.generation(chatID)
	sub, err := s.subRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения подписки: %w", err)
	}
	if sub != nil {
		s.cacheSubscription(ctx, sub, gen)
	}
	return sub, nil
}

// Count количество сохраненных подписок
func (s *Service) Count(ctx context.Context) (int, error) {
	count, err := s.subRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета подписок: %w", err)
	}
	return count, nil
}

// Report обработчик ежедневного отчета: обновляет gauge и пишет итог в лог
func (s *Service) Report(ctx context.Context) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	metrics.SubscriptionsStored.Set(float64(count))
	logger.Info("📊 Подписок в базе: %d", count)
	return nil
}

// Now текущее время сервиса, граница истечения для одного прохода sweeper
func (s *Service) Now() time.Time {
	return s.now()
}

// ListExpired подписки с end_date <= cutoff
func (s *Service) ListExpired(ctx context.Context, cutoff time.Time) ([]*models.Subscription, error) {
	subs, err := s.subRepo.ListExpired(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истекших подписок: %w", err)
	}
	return subs, nil
}

// IsStillExpired перечитывает запись из базы в обход кэша.
// false если записи нет или подписка продлена после cutoff
func (s *Service) IsStillExpired(ctx context.Context, chatID int64, cutoff time.Time) (bool, error) {
	sub, err := s.subRepo.GetByChatID(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки подписки чата %d: %w", chatID, err)
	}
	return sub != nil && !sub.EndDate.After(cutoff), nil
}

// RemoveExpired удаляет подписку, только если она все еще истекла к cutoff
func (s *Service) RemoveExpired(ctx context.Context, chatID int64, cutoff time.Time) (bool, error) {
	deleted, err := s.subRepo.DeleteExpired(ctx, chatID, cutoff)
	if err != nil {
		return false, err
	}
	s.invalidateSubscriptionCache(ctx, chatID)
	return deleted, nil
}

func (s *Service) cacheKey(chatID int64) string {
	return s.cachePrefix + fmt.Sprintf("chat:%d", chatID)
}

func (s *Service) generation(chatID int64) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gen[chatID]
}

// cacheSubscription кладет запись в кэш, если с момента чтения не было инвалидации.
// TTL не превышает остаток подписки, истекшие записи не кэшируются
func (s *Service) cacheSubscription(ctx context.Context, sub *models.Subscription, gen uint64) {
	if s.cache == nil {
		return
	}

	ttl := s.cacheTTL
	if remaining := sub.EndDate.Sub(s.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gen[sub.ChatID] != gen {
		logger.Debug("Подписка чата %d изменилась во время чтения, в кэш не кладем", sub.ChatID)
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(sub.ChatID), sub, ttl); err != nil {
		logger.Warn("⚠️ Не удалось закэшировать подписку чата %d: %v", sub.ChatID, err)
	}
}

func (s *Service) invalidateSubscriptionCache(ctx context.Context, chatID int64) {
	if s.cache == nil {
		return
	}

	s.genMu.Lock()
	s.gen[chatID]++
	s.genMu.Unlock()

	if err := s.cache.Delete(ctx, s.cacheKey(chatID)); err != nil {
		logger.Warn("⚠️ Не удалось сбросить кэш подписки чата %d: %v", chatID, err)
	}
}
