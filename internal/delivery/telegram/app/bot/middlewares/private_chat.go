// internal/delivery/telegram/app/bot/middlewares/private_chat.go
package middlewares

import (
	"errors"
	"strings"

	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/router"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrIgnoredUpdate обновление не требует ответа
var ErrIgnoredUpdate = errors.New("update ignored")

// Виды обновлений для метрик и логов
const (
	KindCommand  = "command"
	KindMessage  = "message"
	KindCallback = "callback"
	KindIgnored  = "ignored"
)

// Route куда направить обновление
type Route struct {
	Key    string
	Kind   string
	Params handlers.HandlerParams
}

// PrivateChatMiddleware пропускает только личные чаты и собирает HandlerParams
type PrivateChatMiddleware struct{}

// NewPrivateChatMiddleware создает middleware
func NewPrivateChatMiddleware() *PrivateChatMiddleware {
	return &PrivateChatMiddleware{}
}

// ProcessUpdate возвращает маршрут обновления.
// ErrIgnoredUpdate для групп, каналов и обновлений без текста.
// Для нераспознанного callback_data возвращается маршрут и ошибка constants.ErrUnknownAction
func (m *PrivateChatMiddleware) ProcessUpdate(update tgbotapi.Update) (Route, error) {
	chat := update.FromChat()
	if chat == nil || !chat.IsPrivate() {
		return Route{Kind: KindIgnored}, ErrIgnoredUpdate
	}

	params := handlers.HandlerParams{
		ChatID:   chat.ID,
		UpdateID: update.UpdateID,
	}
	if user := update.SentFrom(); user != nil {
		params.UserID = user.ID
		params.Username = displayName(user)
	}

	switch {
	case update.Message != nil:
		msg := update.Message
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return Route{Kind: KindIgnored}, ErrIgnoredUpdate
		}
		params.Text = text
		if msg.IsCommand() {
			return Route{Key: router.CommandKey(msg.Command()), Kind: KindCommand, Params: params}, nil
		}
		return Route{Key: router.TextKey(text), Kind: KindMessage, Params: params}, nil

	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		params.CallbackID = query.ID
		params.Data = query.Data
		action, err := constants.ParseAction(query.Data)
		if err != nil {
			return Route{Kind: KindCallback, Params: params}, err
		}
		params.Action = action
		return Route{Key: router.CallbackKey(string(action.Kind)), Kind: KindCallback, Params: params}, nil
	}

	return Route{Kind: KindIgnored}, ErrIgnoredUpdate
}

// displayName username, иначе имя и фамилия
func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
