// internal/delivery/http/server.go
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"subscription-group-bot/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Пути HTTP сервера
const (
	PaystackWebhookPath = "/paystack/webhook"
	TelegramWebhookPath = "/telegram/webhook"
	HealthPath          = "/health"
	MetricsPath         = "/metrics"

	// Последний сегмент секрет webhook, обработчик сверяет его с конфигурацией
	TelegramWebhookRoute = TelegramWebhookPath + "/{secret}"
)

// Dependencies обработчики, подключаемые к серверу
type Dependencies struct {
	Processor WebhookProcessor
	Health    map[string]HealthChecker
	// TelegramWebhook nil в режиме polling
	TelegramWebhook http.Handler
}

// Server HTTP сервер вебхуков, health и метрик
type Server struct {
	server *http.Server
	router chi.Router
}

// NewServer создает сервер на addr
func NewServer(addr string, deps Dependencies) *Server {
	router := NewRouter(deps)
	return &Server{
		router: router,
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// NewRouter собирает маршруты
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(MetricsMiddleware)

	payments := NewPaymentHandler(deps.Processor)
	r.Post(PaystackWebhookPath, payments.Webhook)

	if deps.TelegramWebhook != nil {
		r.Method(http.MethodPost, TelegramWebhookRoute, deps.TelegramWebhook)
	}

	r.Get(HealthPath, NewHealthHandler(deps.Health).Health)
	r.Method(http.MethodGet, MetricsPath, promhttp.Handler())

	return r
}

// Handler корневой обработчик
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start запускает сервер в фоне. Ошибка запуска отправляется в возвращаемый канал
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("🌐 HTTP сервер слушает %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ошибка HTTP сервера: %w", err)
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка остановки HTTP сервера: %w", err)
	}
	logger.Info("🛑 HTTP сервер остановлен")
	return nil
}
