// internal/infrastructure/persistence/postgres/database/service.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"subscription-group-bot/internal/infrastructure/config"
	postgres_migrations "subscription-group-bot/internal/infrastructure/persistence/postgres"
	"subscription-group-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DatabaseService сервис для работы с базой данных
type DatabaseService struct {
	config config.DatabaseConfig
	db     *sqlx.DB
	mu     sync.RWMutex
	state  ServiceState

	// open подменяется в тестах
	open func(driverName, dsn string) (*sqlx.DB, error)
}

// ServiceState состояние сервиса
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateStopping ServiceState = "stopping"
	StateError    ServiceState = "error"
)

// NewDatabaseService создает новый сервис базы данных
func NewDatabaseService(cfg config.DatabaseConfig) *DatabaseService {
	return &DatabaseService{
		config: cfg,
		state:  StateStopped,
		open:   sqlx.Open,
	}
}

// Start подключается к PostgreSQL и применяет миграции схемы
func (ds *DatabaseService) Start(ctx context.Context) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state == StateRunning {
		return fmt.Errorf("database service already running")
	}

	logger.Info("🔄 Starting database service...")
	ds.state = StateStarting

	db, err := ds.open("postgres", ds.config.URL)
	if err != nil {
		ds.state = StateError
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	// Настраиваем пул соединений
	db.SetMaxOpenConns(ds.config.MaxOpenConns)
	db.SetMaxIdleConns(ds.config.MaxIdleConns)
	db.SetConnMaxLifetime(ds.config.MaxConnLifetime)
	db.SetConnMaxIdleTime(ds.config.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		ds.state = StateError
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if !ds.config.SkipMigrations {
		migrator, err := postgres_migrations.NewMigrator(db)
		if err != nil {
			db.Close()
			ds.state = StateError
			return fmt.Errorf("failed to load migrations: %w", err)
		}
		if err := migrator.Migrate(ctx); err != nil {
			db.Close()
			ds.state = StateError
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	ds.db = db
	ds.state = StateRunning

	logger.Info("✅ Successfully connected to PostgreSQL")
	logger.Info("   • Pool: %d/%d connections", ds.config.MaxIdleConns, ds.config.MaxOpenConns)
	return nil
}

// Stop останавливает сервис базы данных
func (ds *DatabaseService) Stop() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state != StateRunning {
		return fmt.Errorf("database service is not running")
	}

	logger.Info("🛑 Stopping database service...")
	ds.state = StateStopping

	if ds.db != nil {
		if err := ds.db.Close(); err != nil {
			ds.state = StateError
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	ds.db = nil
	ds.state = StateStopped
	logger.Info("✅ Database service stopped")
	return nil
}

// GetDB возвращает соединение с базой данных
func (ds *DatabaseService) GetDB() *sqlx.DB {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.db
}

// State возвращает состояние сервиса
func (ds *DatabaseService) State() ServiceState {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.state
}

// HealthCheck проверяет здоровье базы данных
func (ds *DatabaseService) HealthCheck(ctx context.Context) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if ds.state != StateRunning || ds.db == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := ds.db.PingContext(ctx); err != nil {
		logger.Warn("⚠️ Database health check failed: %v", err)
		return false
	}
	return true
}

// GetStats возвращает статистику пула соединений
func (ds *DatabaseService) GetStats() map[string]interface{} {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	stats := map[string]interface{}{
		"state":     ds.state,
		"connected": ds.db != nil,
	}

	if ds.db != nil {
		dbStats := ds.db.Stats()
		stats["open_connections"] = dbStats.OpenConnections
		stats["in_use"] = dbStats.InUse
		stats["idle"] = dbStats.Idle
		stats["wait_count"] = dbStats.WaitCount
	}
	return stats
}
