// internal/core/domain/payment/initiator.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"subscription-group-bot/internal/core/domain/subscription"
	"subscription-group-bot/internal/infrastructure/api/paystack"
	"subscription-group-bot/internal/metrics"
	"subscription-group-bot/pkg/logger"
)

var (
	// ErrPaymentInitiation шлюз не смог создать checkout
	ErrPaymentInitiation = errors.New("payment initiation failed")
	// ErrInvalidPaymentRequest некорректная сумма или email
	ErrInvalidPaymentRequest = errors.New("invalid payment request")
)

// Gateway платежный шлюз
type Gateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeData, error)
}

// InitiateRequest запрос на оплату. Amount в основных единицах валюты
type InitiateRequest struct {
	Amount    int64
	Email     string
	Reference string
	ChatID    int64
	PlanName  string
	Username  string
}

// InitiateResult ссылка на оплату
type InitiateResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// Initiator создает checkout в платежном шлюзе
type Initiator struct {
	gateway     Gateway
	emailDomain string
	callbackURL string
}

// NewInitiator создает инициатор платежей
func NewInitiator(gateway Gateway, emailDomain, callbackURL string) *Initiator {
	if emailDomain == "" {
		emailDomain = "telegram.local"
	}
	return &Initiator{
		gateway:     gateway,
		emailDomain: emailDomain,
		callbackURL: callbackURL,
	}
}

// PayerEmail синтетический email плательщика: Telegram не сообщает email пользователя
func (i *Initiator) PayerEmail(chatID int64) string {
	return fmt.Sprintf("%d@%s", chatID, i.emailDomain)
}

// Initiate конвертирует сумму в kobo, прикладывает метаданные и запрашивает ссылку на оплату
func (i *Initiator) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPaymentRequest)
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidPaymentRequest)
	}
	if req.Reference == "" {
		req.Reference = NewReference()
	}

	data, err := i.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Amount:      req.Amount * 100,
		Email:       req.Email,
		Reference:   req.Reference,
		CallbackURL: i.callbackURL,
		Metadata: map[string]interface{}{
			paystack.MetaChatID:           req.ChatID,
			paystack.MetaPaymentReference: req.Reference,
			paystack.MetaSubscriptionType: req.PlanName,
			paystack.MetaUsername:         req.Username,
		},
	})
	if err != nil {
		metrics.PaymentInitiationsTotal.WithLabelValues(req.PlanName, "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrPaymentInitiation, err)
	}

	metrics.PaymentInitiationsTotal.WithLabelValues(req.PlanName, "ok").Inc()

	reference := data.Reference
	if reference == "" {
		reference = req.Reference
	}
	return &InitiateResult{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        reference,
	}, nil
}

// StartCheckout генерирует ссылку платежа и инициирует оплату выбранного плана
func (i *Initiator) StartCheckout(ctx context.Context, chatID int64, username string, plan subscription.Plan) (*InitiateResult, error) {
	ref := NewReference()
	result, err := i.Initiate(ctx, InitiateRequest{
		Amount:    plan.Price,
		Email:     i.PayerEmail(chatID),
		Reference: ref,
		ChatID:    chatID,
		PlanName:  plan.Name,
		Username:  username,
	})
	if err != nil {
		logger.Error("❌ Ошибка инициации платежа для чата %d (план %s): %v", chatID, plan.Name, err)
		return nil, err
	}

	logger.Info("💳 Создан платеж %s для чата %d (план %s)", result.Reference, chatID, plan.Name)
	return result, nil
}
