// internal/delivery/http/handler.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"subscription-group-bot/internal/core/domain/payment"
	"subscription-group-bot/internal/infrastructure/api/paystack"
	"subscription-group-bot/pkg/logger"
)

// Максимальный размер тела вебхука
const maxWebhookBody = 1 << 20

// WebhookProcessor обрабатывает уведомление платежного шлюза
type WebhookProcessor interface {
	Process(ctx context.Context, body []byte, signature string) (payment.WebhookOutcome, error)
}

// HealthChecker компонент с проверкой здоровья
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// PaymentHandler принимает вебхуки Paystack
type PaymentHandler struct {
	processor WebhookProcessor
}

// NewPaymentHandler создает обработчик вебхуков
func NewPaymentHandler(processor WebhookProcessor) *PaymentHandler {
	return &PaymentHandler{processor: processor}
}

// Webhook POST /paystack/webhook.
// 401 неверная подпись, 400 битый JSON, 500 сбой хранилища (шлюз повторит), иначе 200
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		logger.Warn("⚠️ Не удалось прочитать тело вебхука: %v", err)
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	outcome, err := h.processor.Process(r.Context(), body, r.Header.Get(paystack.SignatureHeader))
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	case errors.Is(err, payment.ErrMalformedPayload):
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "failed to activate", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(outcome)})
}

// HealthHandler отчет о состоянии зависимостей
type HealthHandler struct {
	checks map[string]HealthChecker
	start  time.Time
}

// NewHealthHandler создает обработчик /health. nil-компоненты пропускаются
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	filtered := make(map[string]HealthChecker, len(checks))
	for name, c := range checks {
		if c != nil {
			filtered[name] = c
		}
	}
	return &HealthHandler{checks: filtered, start: time.Now()}
}

// Health GET /health, 503 если хотя бы один компонент недоступен
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.checks))
	healthy := true
	for name, c := range h.checks {
		if c.HealthCheck(ctx) {
			components[name] = "ok"
			continue
		}
		components[name] = "unavailable"
		healthy = false
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"components": components,
		"uptime":     time.Since(h.start).Round(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("⚠️ Ошибка записи ответа: %v", err)
	}
}
