// internal/core/domain/payment/webhook.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"subscription-group-bot/internal/core/domain/subscription"
	"subscription-group-bot/internal/infrastructure/api/paystack"
	"subscription-group-bot/internal/infrastructure/persistence/postgres/models"
	"subscription-group-bot/internal/metrics"
	"subscription-group-bot/pkg/logger"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidSignature подпись вебхука не прошла проверку
	ErrInvalidSignature = paystack.ErrInvalidSignature
	// ErrMalformedPayload тело вебхука не является JSON
	ErrMalformedPayload = errors.New("malformed webhook payload")
	// ErrActivationFailed подписку не удалось сохранить, шлюз должен повторить доставку
	ErrActivationFailed = errors.New("subscription activation failed")
)

// WebhookOutcome результат обработки уведомления
type WebhookOutcome string

const (
	OutcomeActivated   WebhookOutcome = "activated"
	OutcomeDuplicate   WebhookOutcome = "duplicate"
	OutcomeIgnored     WebhookOutcome = "ignored"
	OutcomeInvalidData WebhookOutcome = "invalid_data"
	OutcomeRejected    WebhookOutcome = "rejected"
	OutcomeFailed      WebhookOutcome = "failed"
)

// SignatureVerifier проверяет подпись сырого тела
type SignatureVerifier interface {
	VerifySignature(body []byte, signature string) error
}

// Activator активирует подписку после оплаты
type Activator interface {
	Activate(ctx context.Context, req subscription.ActivateRequest) (*models.Subscription, error)
}

// Confirmer сообщает пользователю об успешной оплате
type Confirmer interface {
	SendPaymentConfirmation(ctx context.Context, sub *models.Subscription) error
}

// WebhookProcessor обрабатывает уведомления платежного шлюза
type WebhookProcessor struct {
	verifier  SignatureVerifier
	activator Activator
	confirmer Confirmer
	guard     ReferenceGuard
	validate  *validator.Validate
}

// NewWebhookProcessor создает обработчик вебхуков
func NewWebhookProcessor(verifier SignatureVerifier, activator Activator, confirmer Confirmer, guard ReferenceGuard) *WebhookProcessor {
	if guard == nil {
		guard = NewMemoryGuard(0)
	}
	return &WebhookProcessor{
		verifier:  verifier,
		activator: activator,
		confirmer: confirmer,
		guard:     guard,
		validate:  validator.New(),
	}
}

// Process проверяет подпись, разбирает событие и активирует подписку.
// Ошибка возвращается только для неверной подписи, битого JSON и сбоя хранилища;
// остальные случаи подтверждаются и игнорируются
func (p *WebhookProcessor) Process(ctx context.Context, body []byte, signature string) (WebhookOutcome, error) {
	outcome, err := p.process(ctx, body, signature)
	metrics.WebhookEventsTotal.WithLabelValues(string(outcome)).Inc()
	return outcome, err
}

func (p *WebhookProcessor) process(ctx context.Context, body []byte, signature string) (WebhookOutcome, error) {
	if err := p.verifier.VerifySignature(body, signature); err != nil {
		logger.Warn("🚫 Вебхук с неверной подписью отклонен")
		return OutcomeRejected, ErrInvalidSignature
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Warn("⚠️ Не удалось разобрать вебхук: %v", err)
		return OutcomeRejected, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if !event.IsSuccessful() {
		logger.Info("ℹ️ Вебхук %s со статусом %q пропущен (ref %s)", event.Event, event.Data.Status, event.Data.Reference)
		return OutcomeIgnored, nil
	}

	meta := event.Data.Metadata
	if err := p.validate.Struct(meta); err != nil {
		logger.Warn("⚠️ Вебхук %s без обязательных метаданных: %s", event.Data.Reference, describeValidation(err))
		return OutcomeInvalidData, nil
	}

	reference := event.Data.Reference
	if reference == "" {
		reference = meta.PaymentReference
	}

	if reference != "" {
		claimed, err := p.guard.Claim(ctx, reference)
		if err != nil {
			logger.Warn("⚠️ Guard недоступен, продолжаем без него: %v", err)
		} else if !claimed {
			logger.Info("🔁 Повторная доставка платежа %s пропущена", reference)
			return OutcomeDuplicate, nil
		}
	}

	sub, err := p.activator.Activate(ctx, subscription.ActivateRequest{
		ChatID:    int64(meta.ChatID),
		PlanName:  meta.SubscriptionType,
		Reference: reference,
		Username:  meta.Username,
	})
	switch {
	case err == nil:
	case errors.Is(err, subscription.ErrReferenceAlreadyApplied):
		logger.Info("🔁 Платеж %s уже применен к подписке чата %d", reference, meta.ChatID)
		return OutcomeDuplicate, nil
	case errors.Is(err, subscription.ErrUnknownPlan):
		logger.Warn("⚠️ Вебхук %s с неизвестным планом %q", reference, meta.SubscriptionType)
		return OutcomeInvalidData, nil
	default:
		p.release(ctx, reference)
		logger.Error("❌ Не удалось активировать подписку чата %d: %v", meta.ChatID, err)
		return OutcomeFailed, fmt.Errorf("%w: %v", ErrActivationFailed, err)
	}

	metrics.SubscriptionsActivatedTotal.WithLabelValues(sub.PlanName).Inc()

	if p.confirmer != nil {
		if err := p.confirmer.SendPaymentConfirmation(ctx, sub); err != nil {
			logger.Warn("⚠️ Не удалось отправить подтверждение чату %d: %v", sub.ChatID, err)
		}
	}

	return OutcomeActivated, nil
}

func (p *WebhookProcessor) release(ctx context.Context, reference string) {
	if reference == "" {
		return
	}
	if err := p.guard.Release(ctx, reference); err != nil {
		logger.Warn("⚠️ Не удалось снять отметку платежа %s: %v", reference, err)
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			msgs = append(msgs, field+" is required")
		} else {
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
