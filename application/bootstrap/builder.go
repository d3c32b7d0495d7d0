// application/bootstrap/builder.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"subscription-group-bot/application/scheduler"
	"subscription-group-bot/internal/core/domain/payment"
	"subscription-group-bot/internal/core/domain/subscription"
	httpdelivery "subscription-group-bot/internal/delivery/http"
	"subscription-group-bot/internal/delivery/telegram/app/bot"
	"subscription-group-bot/internal/delivery/telegram/app/bot/message_sender"
	"subscription-group-bot/internal/infrastructure/api/paystack"
	redis_cache "subscription-group-bot/internal/infrastructure/cache/redis"
	"subscription-group-bot/internal/infrastructure/config"
	"subscription-group-bot/internal/infrastructure/persistence/postgres/database"
	subscription_repo "subscription-group-bot/internal/infrastructure/persistence/postgres/repository/subscription"
	"subscription-group-bot/internal/metrics"
	"subscription-group-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Имена задач планировщика
const (
	sweepJobName  = "subscription_sweeper"
	reportJobName = "subscription_report"
)

// TelegramAPI клиент Telegram, нужный приложению
type TelegramAPI interface {
	message_sender.BotAPI
	bot.UpdatesSource
}

// AppBuilder строит приложение
type AppBuilder struct {
	config *config.Config
	api    TelegramAPI
}

// NewAppBuilder создает построитель
func NewAppBuilder() *AppBuilder {
	return &AppBuilder{}
}

// WithConfig задает конфигурацию
func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	b.config = cfg
	return b
}

// WithTelegramAPI подменяет клиент Telegram, по умолчанию создается tgbotapi.BotAPI
func (b *AppBuilder) WithTelegramAPI(api TelegramAPI) *AppBuilder {
	b.api = api
	return b
}

// Build подключает хранилища и собирает компоненты приложения
func (b *AppBuilder) Build(ctx context.Context) (*Application, error) {
	if b.config == nil {
		return nil, errors.New("конфигурация не задана")
	}
	cfg := b.config
	start := time.Now()

	metrics.InitMetrics()

	app := &Application{config: cfg}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	// 1. PostgreSQL
	app.database = database.NewDatabaseService(cfg.Database)
	if err := app.database.Start(ctx); err != nil {
		app.cancel()
		return nil, fmt.Errorf("запуск базы данных: %w", err)
	}

	// 2. Redis (необязательный)
	var cache subscription.Cache
	var guard payment.ReferenceGuard = payment.NewMemoryGuard(cfg.Subscription.ReferenceTTL)
	if cfg.Redis.Enabled {
		rs := redis_cache.NewRedisService(cfg.Redis)
		if err := rs.Start(ctx); err != nil {
			logger.Warn("⚠️ Redis недоступен, кеш отключен, защита от повторов в памяти: %v", err)
		} else {
			app.redis = rs
			cache = rs.GetCache()
			guard = payment.NewCacheGuard(rs.GetCache(), cfg.Subscription.ReferenceTTL)
		}
	}

	// 3. Подписки
	catalog := subscription.MustDefaultCatalog()
	repo := subscription_repo.NewSubscriptionRepository(app.database.GetDB())
	subscriptions := subscription.NewService(repo, cache, catalog, subscription.Config{
		CacheTTL: cfg.Subscription.CacheTTL,
	})

	// 4. Платежи
	gateway := paystack.NewClient(cfg.Paystack)
	initiator := payment.NewInitiator(gateway, cfg.Paystack.EmailDomain, cfg.Paystack.CallbackURL)

	// 5. Telegram
	api := b.api
	if api == nil {
		botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			app.closeStorage()
			return nil, fmt.Errorf("подключение к Telegram: %w", err)
		}
		botAPI.Debug = cfg.Telegram.Debug
		logger.Info("🤖 Авторизован бот @%s", botAPI.Self.UserName)
		api = botAPI
	}
	app.api = api
	app.bot = bot.NewTelegramBot(api, cfg.Telegram, bot.Dependencies{
		Catalog:       catalog,
		Checkout:      initiator,
		Subscriptions: subscriptions,
		Location:      cfg.Location(),
	})

	// 6. Вебхук платежей
	processor := payment.NewWebhookProcessor(gateway, subscriptions, app.bot, guard)

	// 7. Планировщик очистки
	sweeper := subscription.NewSweeper(subscriptions, app.bot, app.bot)
	app.scheduler = scheduler.New()
	if err := app.scheduler.Register(&scheduler.Job{
		Name:        sweepJobName,
		Description: "Удаление истекших подписок и исключение из группы",
		Schedule:    scheduler.Every(cfg.Subscription.SweepInterval),
		Handler:     sweeper.Run,
		RunOnStart:  true,
		Timeout:     cfg.Subscription.SweepInterval,
	}); err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("регистрация задачи очистки: %w", err)
	}
	if err := app.scheduler.Register(&scheduler.Job{
		Name:        reportJobName,
		Description: "Ежедневный отчет о количестве подписок",
		Schedule:    scheduler.DailyAt(0, 0),
		Handler:     subscriptions.Report,
		RunOnStart:  true,
		Timeout:     time.Minute,
	}); err != nil {
		app.closeStorage()
		return nil, fmt.Errorf("регистрация задачи отчета: %w", err)
	}

	// 8. HTTP сервер
	health := map[string]httpdelivery.HealthChecker{"database": app.database}
	if app.redis != nil {
		health["redis"] = app.redis
	}
	deps := httpdelivery.Dependencies{Processor: processor, Health: health}
	if cfg.IsWebhookMode() {
		deps.TelegramWebhook = bot.NewWebhookHandler(app.ctx, app.bot, cfg.Telegram.WebhookSecret)
	} else {
		app.polling = bot.NewPollingClient(api, app.bot, cfg.Telegram.PollingTimeout)
	}
	app.server = httpdelivery.NewServer(cfg.ListenAddr(), deps)

	logger.Info("🏗️  Приложение собрано за %v", time.Since(start))
	return app, nil
}
