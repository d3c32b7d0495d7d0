// internal/delivery/telegram/app/bot/webhook.go
package bot

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"subscription-group-bot/internal/delivery/telegram/app/bot/message_sender"
	"subscription-group-bot/pkg/logger"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookSecretParam имя параметра маршрута с секретом
const WebhookSecretParam = "secret"

// WebhookHandler принимает обновления Telegram в режиме webhook
type WebhookHandler struct {
	bot    *TelegramBot
	ctx    context.Context
	secret []byte
}

// NewWebhookHandler создает http.Handler. ctx ограничивает время жизни обработки обновлений,
// secret сверяется с сегментом пути {secret}
func NewWebhookHandler(ctx context.Context, bot *TelegramBot, secret string) *WebhookHandler {
	return &WebhookHandler{bot: bot, ctx: ctx, secret: []byte(secret)}
}

// ServeHTTP разбирает обновление и сразу отвечает 200, обработка идет асинхронно
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		logger.Warn("⚠️ Обновление Telegram с неверным секретом webhook отклонено")
		http.NotFound(w, r)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		logger.Warn("⚠️ Неверное обновление Telegram webhook: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	h.bot.Dispatch(h.ctx, update)
	w.WriteHeader(http.StatusOK)
}

// authorized пустой секрет не принимает ни одного запроса
func (h *WebhookHandler) authorized(r *http.Request) bool {
	got := []byte(chi.URLParam(r, WebhookSecretParam))
	return len(h.secret) > 0 && subtle.ConstantTimeCompare(got, h.secret) == 1
}

// WebhookURL адрес для Telegram: baseURL с секретным сегментом в конце
func WebhookURL(baseURL, secret string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(secret)
}

// RegisterWebhook сообщает Telegram адрес webhook. В лог секрет не пишется
func RegisterWebhook(api message_sender.BotAPI, baseURL, secret string) error {
	wh, err := tgbotapi.NewWebhook(WebhookURL(baseURL, secret))
	if err != nil {
		return fmt.Errorf("неверный адрес webhook: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("ошибка регистрации webhook: %w", err)
	}
	logger.Info("🌐 Webhook зарегистрирован: %s/***", strings.TrimRight(baseURL, "/"))
	return nil
}

// DeleteWebhook отключает webhook перед запуском polling
func DeleteWebhook(api message_sender.BotAPI) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("ошибка удаления webhook: %w", err)
	}
	return nil
}
