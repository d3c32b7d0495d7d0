// internal/delivery/telegram/app/bot/handlers/types.go
package handlers

import (
	"context"

	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/conversation"
)

// HandlerType тип хэндлера
type HandlerType string

const (
	TypeCommand  HandlerType = "command"
	TypeCallback HandlerType = "callback"
	TypeMessage  HandlerType = "message"
)

// Handler интерфейс для всех хэндлеров
type Handler interface {
	Execute(ctx context.Context, params HandlerParams) (HandlerResult, error)
	GetName() string
	GetCommand() string // команда, текст кнопки или вид callback
	GetType() HandlerType
}

// HandlerParams параметры обновления для хэндлера
type HandlerParams struct {
	ChatID     int64
	UserID     int64
	Username   string
	Text       string           // текст сообщения
	Data       string           // сырой callback_data
	Action     constants.Action // разобранный callback_data
	CallbackID string
	UpdateID   int
	Session    conversation.Session
}

// HandlerResult ответ хэндлера
type HandlerResult struct {
	Message  string
	Keyboard interface{}
	// NextStep новое состояние диалога, nil оставляет текущее
	NextStep *conversation.Session
	Metadata map[string]interface{}
}

// Step возвращает указатель на сессию для HandlerResult.NextStep
func Step(state conversation.State) *conversation.Session {
	return &conversation.Session{State: state}
}
