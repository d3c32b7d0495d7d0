// internal/delivery/telegram/app/bot/polling.go
package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"subscription-group-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdatesSource источник обновлений long polling
type UpdatesSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Dispatch обрабатывает обновление в отдельной горутине.
// Блокируется, если уже обрабатывается MaxConcurrent обновлений
func (b *TelegramBot) Dispatch(ctx context.Context, update tgbotapi.Update) {
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() { <-b.sem }()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("🔥 Паника при обработке обновления %d: %v\n%s", update.UpdateID, r, debug.Stack())
			}
		}()

		if err := b.HandleUpdate(ctx, update); err != nil {
			logger.Error("❌ Ошибка обработки обновления %d: %v", update.UpdateID, err)
		}
	}()
}

// Wait ждет завершения обработки всех обновлений
func (b *TelegramBot) Wait() {
	b.wg.Wait()
}

// PollingClient - получение обновлений через long polling
type PollingClient struct {
	source  UpdatesSource
	bot     *TelegramBot
	timeout int

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewPollingClient создает polling клиент
func NewPollingClient(source UpdatesSource, bot *TelegramBot, timeout int) *PollingClient {
	return &PollingClient{
		source:  source,
		bot:     bot,
		timeout: timeout,
	}
}

// Start запускает получение обновлений до отмены ctx или Stop
func (pc *PollingClient) Start(ctx context.Context) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.running {
		return fmt.Errorf("polling уже запущен")
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pc.timeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := pc.source.GetUpdatesChan(cfg)

	pc.running = true
	pc.stop = make(chan struct{})
	pc.done = make(chan struct{})
	logger.Info("🔄 Запуск Telegram polling (timeout %ds)", pc.timeout)

	go pc.pollLoop(ctx, updates, pc.stop, pc.done)
	return nil
}

// pollLoop основной цикл polling.
// ctx передается в обработчики, stop завершает только цикл
func (pc *PollingClient) pollLoop(ctx context.Context, updates tgbotapi.UpdatesChannel, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			pc.bot.Dispatch(ctx, update)
		}
	}
}

// Stop останавливает polling и ждет обработки полученных обновлений
func (pc *PollingClient) Stop() {
	pc.mu.Lock()
	if !pc.running {
		pc.mu.Unlock()
		return
	}
	pc.running = false
	close(pc.stop)
	done := pc.done
	pc.mu.Unlock()

	pc.source.StopReceivingUpdates()
	<-done
	pc.bot.Wait()
	logger.Info("🛑 Telegram polling остановлен")
}
