// internal/infrastructure/api/paystack/types.go
package paystack

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Метаданные, которые бот прикрепляет к транзакции
const (
	MetaChatID           = "telegram_chat_id"
	MetaPaymentReference = "payment_reference"
	MetaSubscriptionType = "subscription_type"
	MetaUsername         = "username"
)

// События и статусы вебхука
const (
	EventChargeSuccess = "charge.success"
	StatusSuccess      = "success"
)

// InitializeRequest тело POST /transaction/initialize. Amount в минимальных единицах (kobo)
type InitializeRequest struct {
	Amount      int64                  `json:"amount"`
	Email       string                 `json:"email"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// InitializeData полезная нагрузка успешной инициализации
type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// InitializeResponse ответ /transaction/initialize
type InitializeResponse struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Data    InitializeData `json:"data"`
}

// WebhookEvent конверт уведомления о платеже
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

// WebhookData данные транзакции в уведомлении
type WebhookData struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	PaidAt    string          `json:"paid_at"`
	Metadata  WebhookMetadata `json:"metadata"`
}

// IsSuccessful транзакция подтверждена шлюзом
func (e *WebhookEvent) IsSuccessful() bool {
	if e.Data.Status != StatusSuccess {
		return false
	}
	return e.Event == "" || e.Event == EventChargeSuccess
}

// WebhookMetadata метаданные, возвращенные шлюзом.
// Шлюз может прислать telegram_chat_id как числом, так и строкой
type WebhookMetadata struct {
	ChatID           FlexibleInt64 `json:"telegram_chat_id" validate:"required,ne=0"`
	PaymentReference string        `json:"payment_reference"`
	SubscriptionType string        `json:"subscription_type" validate:"required"`
	Username         string        `json:"username"`
}

// UnmarshalJSON терпит пустые и строковые метаданные
func (m *WebhookMetadata) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		*m = WebhookMetadata{}
		return nil
	}

	// Некоторые интеграции присылают metadata строкой с JSON внутри
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		data = []byte(inner)
	}

	type plain WebhookMetadata
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid metadata: %w", err)
	}
	*m = WebhookMetadata(p)
	return nil
}

// FlexibleInt64 число, принимающее JSON number или строку
type FlexibleInt64 int64

func (f *FlexibleInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", s, err)
	}
	*f = FlexibleInt64(v)
	return nil
}

// APIError ошибка ответа Paystack
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("paystack API error %d: %s", e.StatusCode, e.Message)
}
