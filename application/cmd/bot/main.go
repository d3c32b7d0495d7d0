// application/cmd/bot/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	_ "time/tzdata"

	"subscription-group-bot/application/bootstrap"
	"subscription-group-bot/internal/infrastructure/config"
	"subscription-group-bot/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "неизвестно"
)

func main() {
	// Парсим аргументы командной строки
	var (
		env         string
		cfgPath     string
		logLevel    string
		showHelp    bool
		showVersion bool
	)

	flag.StringVar(&env, "env", "dev", "Окружение (dev/prod)")
	flag.StringVar(&cfgPath, "config", "", "Путь к файлу конфигурации (переопределяет env)")
	flag.StringVar(&logLevel, "log-level", "", "Уровень логирования: debug, info, warn, error (переопределяет .env)")
	flag.BoolVar(&showHelp, "help", false, "Показать справку")
	flag.BoolVar(&showVersion, "version", false, "Показать версию")
	flag.Parse()

	if showVersion {
		printVersion()
		return
	}
	if showHelp {
		printHelp()
		return
	}

	// Консольный логгер до загрузки конфигурации
	if err := logger.InitGlobal("", "info", false); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Не удалось инициализировать логгер: %v\n", err)
		os.Exit(1)
	}

	// 1. Загружаем конфигурацию
	configFile := resolveConfigFile(env, cfgPath)
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		logger.Error("❌ Не удалось загрузить конфигурацию: %v", err)
		os.Exit(1)
	}
	if os.Getenv("ENVIRONMENT") == "" {
		cfg.Environment = env
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cfg.Version == "" {
		cfg.Version = version
	}

	// 2. Логгер по конфигурации
	if err := initLogger(cfg); err != nil {
		logger.Error("❌ Не удалось инициализировать файловый логгер: %v", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("🚀 Запуск Subscription Group Bot v%s (сборка: %s)", cfg.Version, buildTime)
	logger.Status("📋 Конфигурация приложения", cfg.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Собираем приложение
	app, err := bootstrap.NewAppBuilder().
		WithConfig(cfg).
		Build(ctx)
	if err != nil {
		logger.Error("❌ Не удалось собрать приложение: %v", err)
		os.Exit(1)
	}

	// 4. Запускаем и ждем сигнала завершения
	logger.Info("🛑 Нажмите Ctrl+C для остановки")
	if err := app.Run(ctx); err != nil {
		logger.Error("❌ Приложение завершилось с ошибкой: %v", err)
		os.Exit(1)
	}
}

// resolveConfigFile выбирает .env: явный путь, configs/<env>/.env или ./.env.
// Пустая строка означает только переменные окружения
func resolveConfigFile(env, explicit string) string {
	if explicit != "" {
		return explicit
	}

	candidates := []string{filepath.Join("configs", env, ".env"), ".env"}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			logger.Info("📁 Используется конфиг файл: %s", path)
			return path
		}
	}

	logger.Warn("⚠️  Файл конфигурации не найден, используются переменные окружения")
	return ""
}

// initLogger пересоздает глобальный логгер с уровнем и файлом из конфигурации
func initLogger(cfg *config.Config) error {
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o755); err != nil {
			return fmt.Errorf("создание директории логов: %w", err)
		}
	}

	previous := logger.GetLogger()
	if err := logger.InitGlobal(cfg.Logging.File, cfg.Logging.Level, cfg.Logging.DebugMode); err != nil {
		return err
	}
	if previous != nil && previous != logger.GetLogger() {
		previous.Close()
	}
	return nil
}

func printVersion() {
	fmt.Printf("🤖 Subscription Group Bot v%s\n", version)
	fmt.Printf("📅 Сборка: %s\n", buildTime)
}

func printHelp() {
	fmt.Println("🤖 Subscription Group Bot")
	fmt.Println("Доступ в закрытую Telegram группу по платной подписке (Paystack)")
	fmt.Println()
	fmt.Println("Использование: bot [опции]")
	fmt.Println()
	fmt.Println("Опции:")
	fmt.Println("  --env string       Окружение (dev/prod) (по умолчанию: dev)")
	fmt.Println("  --config string    Путь к файлу конфигурации (переопределяет env)")
	fmt.Println("  --log-level string Уровень логирования: debug, info, warn, error (переопределяет .env)")
	fmt.Println("  --version          Показать информацию о версии")
	fmt.Println("  --help             Показать это справочное сообщение")
	fmt.Println()
	fmt.Println("Обязательные переменные окружения:")
	fmt.Println("  PAYSTACK_SECRET_KEY  Секретный ключ Paystack")
	fmt.Println("  DATABASE_URL         Строка подключения PostgreSQL")
	fmt.Println("  BOT_TOKEN            Токен Telegram бота")
	fmt.Println("  TELEGRAM_GROUP_ID    ID закрытой группы")
	fmt.Println()
	fmt.Println("Необязательные:")
	fmt.Println("  PORT (8443), TELEGRAM_MODE (polling|webhook), WEBHOOK_URL, TELEGRAM_WEBHOOK_SECRET, SWEEP_INTERVAL (200s),")
	fmt.Println("  DISPLAY_TIMEZONE (Africa/Lagos), REDIS_ENABLED, REDIS_HOST, REDIS_PORT, LOG_LEVEL, LOG_FILE")
}
