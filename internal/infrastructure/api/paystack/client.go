// internal/infrastructure/api/paystack/client.go
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subscription-group-bot/internal/infrastructure/config"
)

// SignatureHeader заголовок с подписью вебхука
const SignatureHeader = "x-paystack-signature"

// ErrInvalidSignature подпись вебхука отсутствует или не совпадает
var ErrInvalidSignature = errors.New("invalid paystack signature")

// ============================================
// PAYSTACK CLIENT
// ============================================

// Client клиент REST API Paystack
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// NewClient создает клиент из конфигурации
func NewClient(cfg config.PaystackConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
	}
}

// InitializeTransaction создает checkout и возвращает ссылку на оплату
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeData, error) {
	body, err := c.sendRequest(ctx, http.MethodPost, "/transaction/initialize", req)
	if err != nil {
		return nil, err
	}

	var resp InitializeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode initialize response: %w", err)
	}
	if !resp.Status {
		return nil, &APIError{StatusCode: http.StatusOK, Message: resp.Message}
	}
	if resp.Data.AuthorizationURL == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "empty authorization_url"}
	}

	return &resp.Data, nil
}

// VerifySignature проверяет HMAC-SHA512 подпись сырого тела вебхука
func (c *Client) VerifySignature(body []byte, signature string) error {
	return VerifySignature(c.secretKey, body, signature)
}

// VerifySignature проверяет подпись с указанным секретом
func VerifySignature(secretKey string, body []byte, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return ErrInvalidSignature
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}

	if !hmac.Equal(got, computeSignature(secretKey, body)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign подпись тела вебхука в hex (используется в тестах и утилитах)
func Sign(secretKey string, body []byte) string {
	return hex.EncodeToString(computeSignature(secretKey, body))
}

func computeSignature(secretKey string, body []byte) []byte {
	h := hmac.New(sha512.New, []byte(secretKey))
	h.Write(body)
	return h.Sum(nil)
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

// sendRequest отправляет авторизованный JSON запрос
func (c *Client) sendRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "SubscriptionGroupBot/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		var apiResp InitializeResponse
		if err := json.Unmarshal(body, &apiResp); err == nil && apiResp.Message != "" {
			msg = apiResp.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return body, nil
}
