// /internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	URL string `mapstructure:"DATABASE_URL"`

	// Настройки пула соединений
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxConnLifetime time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`

	// Миграции схемы применяются при старте, если не отключены
	SkipMigrations bool `mapstructure:"DB_SKIP_MIGRATIONS"`
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`     // localhost
	Port     int    `mapstructure:"REDIS_PORT"`     // 6379
	Password string `mapstructure:"REDIS_PASSWORD"` // пустой или пароль
	DB       int    `mapstructure:"REDIS_DB"`       // 0

	// Redis необязателен: без него кэш статуса и защита от дублей работают в памяти
	Enabled bool `mapstructure:"REDIS_ENABLED"`

	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`      // 10
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"` // 2
	MaxRetries   int           `mapstructure:"REDIS_MAX_RETRIES"`    // 3
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`   // 5s
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`   // 3s
	WriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`  // 3s
}

// TelegramConfig настройки бота
type TelegramConfig struct {
	BotToken string `mapstructure:"BOT_TOKEN"`
	GroupID  int64  `mapstructure:"TELEGRAM_GROUP_ID"`

	// polling или webhook
	Mode       string `mapstructure:"TELEGRAM_MODE"`
	WebhookURL string `mapstructure:"WEBHOOK_URL"`
	// Секретный сегмент пути webhook, Telegram добавляет его к WEBHOOK_URL
	WebhookSecret string `mapstructure:"TELEGRAM_WEBHOOK_SECRET"`

	// Исходящие сообщения в секунду
	RateLimit      float64 `mapstructure:"TELEGRAM_RATE_LIMIT"`
	PollingTimeout int     `mapstructure:"TELEGRAM_POLLING_TIMEOUT"`
	MaxConcurrent  int     `mapstructure:"TELEGRAM_MAX_CONCURRENT"`
	Debug          bool    `mapstructure:"TELEGRAM_DEBUG"`
}

// PaystackConfig настройки платежного шлюза
type PaystackConfig struct {
	SecretKey   string        `mapstructure:"PAYSTACK_SECRET_KEY"`
	BaseURL     string        `mapstructure:"PAYSTACK_BASE_URL"`
	Timeout     time.Duration `mapstructure:"PAYSTACK_TIMEOUT"`
	EmailDomain string        `mapstructure:"PAYER_EMAIL_DOMAIN"`
	CallbackURL string        `mapstructure:"PAYSTACK_CALLBACK_URL"`
}

// SubscriptionConfig настройки жизненного цикла подписки
type SubscriptionConfig struct {
	SweepInterval   time.Duration `mapstructure:"SWEEP_INTERVAL"`
	DisplayTimezone string        `mapstructure:"DISPLAY_TIMEZONE"`
	CacheTTL        time.Duration `mapstructure:"SUBSCRIPTION_CACHE_TTL"`
	ReferenceTTL    time.Duration `mapstructure:"REFERENCE_GUARD_TTL"`
}

// LoggingConfig настройки логирования
type LoggingConfig struct {
	Level     string `mapstructure:"LOG_LEVEL"`
	File      string `mapstructure:"LOG_FILE"`
	DebugMode bool   `mapstructure:"DEBUG_MODE"`
}

// Config - основная структура конфигурации
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	// HTTP сервер (вебхук Paystack, health, metrics)
	Port int `mapstructure:"PORT"`

	Database     DatabaseConfig
	Redis        RedisConfig
	Telegram     TelegramConfig
	Paystack     PaystackConfig
	Subscription SubscriptionConfig
	Logging      LoggingConfig
}

// LoadConfig загружает конфигурацию из .env файла (если он есть) и окружения
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			fmt.Printf("⚠️  Config file %s not found, using environment variables\n", path)
		}
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")
	cfg.Version = getEnv("VERSION", "1.0.0")
	cfg.Port = getEnvInt("PORT", 8443)

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database.URL = getEnv("DATABASE_URL", "")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	cfg.Database.MaxConnLifetime = getEnvDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute)
	cfg.Database.MaxConnIdleTime = getEnvDuration("DB_MAX_CONN_IDLE_TIME", 10*time.Minute)
	cfg.Database.SkipMigrations = getEnvBool("DB_SKIP_MIGRATIONS", false)

	// ======================
	// REDIS
	// ======================
	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnvInt("REDIS_PORT", 6379)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	cfg.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", 10)
	cfg.Redis.MinIdleConns = getEnvInt("REDIS_MIN_IDLE_CONNS", 2)
	cfg.Redis.MaxRetries = getEnvInt("REDIS_MAX_RETRIES", 3)
	cfg.Redis.DialTimeout = getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.Redis.ReadTimeout = getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.Redis.WriteTimeout = getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second)

	// ======================
	// TELEGRAM
	// ======================
	cfg.Telegram.BotToken = getEnv("BOT_TOKEN", "")
	cfg.Telegram.GroupID = getEnvInt64("TELEGRAM_GROUP_ID", 0)
	cfg.Telegram.Mode = strings.ToLower(getEnv("TELEGRAM_MODE", "polling"))
	cfg.Telegram.WebhookURL = getEnv("WEBHOOK_URL", "")
	cfg.Telegram.WebhookSecret = getEnv("TELEGRAM_WEBHOOK_SECRET", "")
	cfg.Telegram.RateLimit = getEnvFloat("TELEGRAM_RATE_LIMIT", 25)
	cfg.Telegram.PollingTimeout = getEnvInt("TELEGRAM_POLLING_TIMEOUT", 30)
	cfg.Telegram.MaxConcurrent = getEnvInt("TELEGRAM_MAX_CONCURRENT", 32)
	cfg.Telegram.Debug = getEnvBool("TELEGRAM_DEBUG", false)

	// ======================
	// PAYSTACK
	// ======================
	cfg.Paystack.SecretKey = getEnv("PAYSTACK_SECRET_KEY", "")
	cfg.Paystack.BaseURL = getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co")
	cfg.Paystack.Timeout = getEnvDuration("PAYSTACK_TIMEOUT", 15*time.Second)
	cfg.Paystack.EmailDomain = getEnv("PAYER_EMAIL_DOMAIN", "telegram.local")
	cfg.Paystack.CallbackURL = getEnv("PAYSTACK_CALLBACK_URL", "")

	// ======================
	// ПОДПИСКИ
	// ======================
	cfg.Subscription.SweepInterval = getEnvDuration("SWEEP_INTERVAL", 200*time.Second)
	cfg.Subscription.DisplayTimezone = getEnv("DISPLAY_TIMEZONE", "Africa/Lagos")
	cfg.Subscription.CacheTTL = getEnvDuration("SUBSCRIPTION_CACHE_TTL", 30*time.Minute)
	cfg.Subscription.ReferenceTTL = getEnvDuration("REFERENCE_GUARD_TTL", 72*time.Hour)

	// ======================
	// ЛОГИРОВАНИЕ
	// ======================
	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.File = getEnv("LOG_FILE", "")
	cfg.Logging.DebugMode = getEnvBool("DEBUG_MODE", false)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate проверяет обязательные параметры конфигурации
func (c *Config) validate() error {
	var validationErrors []string

	if c.Paystack.SecretKey == "" {
		validationErrors = append(validationErrors, "PAYSTACK_SECRET_KEY is required")
	}
	if c.Database.URL == "" {
		validationErrors = append(validationErrors, "DATABASE_URL is required")
	}
	if c.Telegram.BotToken == "" {
		validationErrors = append(validationErrors, "BOT_TOKEN is required")
	}
	if c.Telegram.GroupID == 0 {
		validationErrors = append(validationErrors, "TELEGRAM_GROUP_ID is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		validationErrors = append(validationErrors, "PORT должен быть в диапазоне 1-65535")
	}
	if c.Subscription.SweepInterval <= 0 {
		validationErrors = append(validationErrors, "SWEEP_INTERVAL must be positive")
	}
	if _, err := time.LoadLocation(c.Subscription.DisplayTimezone); err != nil {
		validationErrors = append(validationErrors, fmt.Sprintf("DISPLAY_TIMEZONE %q is unknown", c.Subscription.DisplayTimezone))
	}

	// Валидация режима Telegram
	if c.Telegram.Mode != "polling" && c.Telegram.Mode != "webhook" {
		validationErrors = append(validationErrors, "TELEGRAM_MODE должен быть 'polling' или 'webhook'")
	}
	if c.Telegram.Mode == "webhook" && c.Telegram.WebhookURL == "" {
		validationErrors = append(validationErrors, "WEBHOOK_URL обязателен для webhook режима")
	}
	if c.Telegram.Mode == "webhook" && !validWebhookSecret(c.Telegram.WebhookSecret) {
		validationErrors = append(validationErrors, fmt.Sprintf("TELEGRAM_WEBHOOK_SECRET обязателен для webhook режима: %d-256 символов A-Z, a-z, 0-9, _ или -", minWebhookSecretLen))
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("%s", strings.Join(validationErrors, "; "))
	}

	return nil
}

// Минимальная длина секрета webhook
const minWebhookSecretLen = 16

// validWebhookSecret секрет попадает в путь URL без экранирования
func validWebhookSecret(secret string) bool {
	if len(secret) < minWebhookSecretLen || len(secret) > 256 {
		return false
	}
	for _, r := range secret {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	return c.validate()
}

// IsWebhookMode сообщает, получает ли бот обновления через вебхук
func (c *Config) IsWebhookMode() bool {
	return c.Telegram.Mode == "webhook"
}

// IsPollingMode по умолчанию polling
func (c *Config) IsPollingMode() bool {
	return c.Telegram.Mode == "polling" || c.Telegram.Mode == ""
}

// GetRedisAddress возвращает адрес Redis
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// ListenAddr адрес HTTP сервера
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Location возвращает часовой пояс для отображения дат пользователю
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Subscription.DisplayTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Summary сводка конфигурации без секретов
func (c *Config) Summary() map[string]string {
	return map[string]string{
		"Окружение":      c.Environment,
		"HTTP порт":      strconv.Itoa(c.Port),
		"Telegram режим": c.Telegram.Mode,
		"Telegram токен": maskSecret(c.Telegram.BotToken),
		"Группа":         strconv.FormatInt(c.Telegram.GroupID, 10),
		"Paystack":       c.Paystack.BaseURL,
		"Paystack ключ":  maskSecret(c.Paystack.SecretKey),
		"Redis":          fmt.Sprintf("%v (%s)", c.Redis.Enabled, c.GetRedisAddress()),
		"Интервал sweep": c.Subscription.SweepInterval.String(),
		"Часовой пояс":   c.Subscription.DisplayTimezone,
		"Уровень логов":  c.Logging.Level,
	}
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
