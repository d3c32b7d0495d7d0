// internal/delivery/telegram/app/bot/handlers/base/base.go
package base

import (
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
)

// BaseHandler базовая структура для всех хэндлеров
type BaseHandler struct {
	Name    string
	Command string
	Type    handlers.HandlerType
}

// GetName возвращает имя хэндлера
func (h *BaseHandler) GetName() string {
	return h.Name
}

// GetCommand возвращает команду/callback
func (h *BaseHandler) GetCommand() string {
	return h.Command
}

// GetType возвращает тип хэндлера
func (h *BaseHandler) GetType() handlers.HandlerType {
	return h.Type
}

// DisplayName имя пользователя для записи подписки
func (h *BaseHandler) DisplayName(params handlers.HandlerParams) string {
	if params.Username != "" {
		return params.Username
	}
	return "unknown"
}
