// application/bootstrap/app.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"subscription-group-bot/application/scheduler"
	httpdelivery "subscription-group-bot/internal/delivery/http"
	"subscription-group-bot/internal/delivery/telegram/app/bot"
	redis_cache "subscription-group-bot/internal/infrastructure/cache/redis"
	"subscription-group-bot/internal/infrastructure/config"
	"subscription-group-bot/internal/infrastructure/persistence/postgres/database"
	"subscription-group-bot/pkg/logger"
)

// Лимит времени на graceful shutdown
const shutdownTimeout = 30 * time.Second

// Application - основное приложение
type Application struct {
	config *config.Config

	database  *database.DatabaseService
	redis     *redis_cache.RedisService
	api       TelegramAPI
	bot       *bot.TelegramBot
	polling   *bot.PollingClient
	scheduler *scheduler.Scheduler
	server    *httpdelivery.Server

	// ctx живет до остановки приложения
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	running   bool
	startTime time.Time
}

// Run запускает прием обновлений, планировщик и HTTP сервер.
// Блокируется до отмены ctx или ошибки HTTP сервера, затем останавливает приложение
func (app *Application) Run(ctx context.Context) error {
	app.mu.Lock()
	if app.running {
		app.mu.Unlock()
		return errors.New("приложение уже запущено")
	}
	app.running = true
	app.startTime = time.Now()
	app.mu.Unlock()

	logger.Info("🚀 Запуск приложения...")

	if err := app.bot.SetMyCommands(ctx); err != nil {
		logger.Warn("Не удалось установить меню команд: %v", err)
		logger.Info("Бот будет работать, но меню команд в Telegram может не отображаться")
	}

	if err := app.startUpdates(); err != nil {
		app.shutdownWithTimeout(shutdownTimeout)
		return err
	}

	app.scheduler.Start(app.ctx)
	serverErr := app.server.Start()

	logger.Info("✅ Приложение запущено и работает")
	logger.Status("Статус приложения", app.Status())

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("🛑 Получен сигнал завершения...")
	case err, ok := <-serverErr:
		if ok && err != nil {
			runErr = err
			logger.Error("❌ %v", err)
		}
	}

	app.shutdownWithTimeout(shutdownTimeout)
	return runErr
}

// startUpdates включает webhook или long polling
func (app *Application) startUpdates() error {
	if app.config.IsWebhookMode() {
		if err := bot.RegisterWebhook(app.api, app.config.Telegram.WebhookURL, app.config.Telegram.WebhookSecret); err != nil {
			return fmt.Errorf("регистрация webhook: %w", err)
		}
		return nil
	}

	// webhook и getUpdates взаимоисключающие
	if err := bot.DeleteWebhook(app.api); err != nil {
		logger.Warn("⚠️ %v", err)
	}
	if err := app.polling.Start(app.ctx); err != nil {
		return fmt.Errorf("запуск polling: %w", err)
	}
	return nil
}

// shutdownWithTimeout выполняет graceful shutdown с таймаутом
func (app *Application) shutdownWithTimeout(timeout time.Duration) {
	logger.Info("⏳ Начинаем graceful shutdown (таймаут: %v)...", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		app.shutdown(ctx)
		close(done)
	}()

	select {
	case <-done:
		logger.Info("✅ Graceful shutdown завершен успешно")
	case <-ctx.Done():
		logger.Warn("⚠️  Таймаут graceful shutdown, принудительное завершение")
	}
}

// shutdown останавливает компоненты в обратном порядке запуска
func (app *Application) shutdown(ctx context.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if !app.running {
		return
	}

	// 1. Прекращаем прием обновлений и ждем их обработки
	if app.polling != nil {
		app.polling.Stop()
	}

	// 2. HTTP сервер: вебхуки, которые уже приняты, дорабатывают
	if err := app.server.Shutdown(ctx); err != nil {
		logger.Warn("⚠️  %v", err)
	}
	app.bot.Wait()

	// 3. Планировщик ждет текущий проход очистки
	app.scheduler.Stop()
	app.cancel()

	// 4. Хранилища
	app.closeStorage()

	app.running = false
	logger.Info("✅ Приложение остановлено. Время работы: %v", time.Since(app.startTime).Round(time.Second))
}

// closeStorage закрывает подключения к Redis и PostgreSQL
func (app *Application) closeStorage() {
	if app.redis != nil {
		if err := app.redis.Stop(); err != nil {
			logger.Warn("⚠️  Ошибка остановки Redis: %v", err)
		}
	}
	if app.database != nil {
		if err := app.database.Stop(); err != nil {
			logger.Warn("⚠️  Ошибка остановки базы данных: %v", err)
		}
	}
}

// Close освобождает ресурсы приложения, которое не было запущено
func (app *Application) Close() {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.running {
		return
	}
	app.cancel()
	app.closeStorage()
}

// Status снапшот состояния для логов
func (app *Application) Status() map[string]string {
	status := map[string]string{
		"Режим Telegram": app.config.Telegram.Mode,
		"Redis":          "выключен",
		"Активных чатов": fmt.Sprintf("%d", app.bot.Tracker().Len()),
		"Аптайм бота":    app.bot.Uptime().Truncate(time.Second).String(),
	}
	if app.redis != nil {
		status["Redis"] = string(app.redis.State())
	}
	if stats := app.database.GetStats(); stats["connected"] == true {
		status["PostgreSQL"] = fmt.Sprintf("открыто соединений %v, используется %v", stats["open_connections"], stats["in_use"])
	}
	for _, job := range app.scheduler.Jobs() {
		status["Задача "+job.Name] = fmt.Sprintf("запусков %d, следующий %s", job.Runs, job.NextRun.Format("15:04:05"))
	}
	return status
}
