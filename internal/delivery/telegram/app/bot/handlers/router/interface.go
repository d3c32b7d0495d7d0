// internal/delivery/telegram/app/bot/handlers/router/interface.go
package router

import (
	"context"

	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
)

// Router интерфейс маршрутизатора хэндлеров
type Router interface {
	RegisterHandler(handler handlers.Handler)                 // регистрация по GetCommand/GetType
	RegisterCommand(command string, handler handlers.Handler) // явная регистрация команды
	RegisterCallback(kind string, handler handlers.Handler)   // явная регистрация вида callback
	SetFallback(handler handlers.Handler)                     // хэндлер для нераспознанного ввода
	Handle(ctx context.Context, key string, params handlers.HandlerParams) (handlers.HandlerResult, error)
	GetHandler(key string) (handlers.Handler, bool)
	GetCommands() []string
}
