// internal/delivery/telegram/app/bot/handlers/router/router.go
package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/pkg/logger"
)

// ErrHandlerNotFound для ключа нет хэндлера и не задан fallback
var ErrHandlerNotFound = errors.New("handler not found")

// routerImpl реализация Router
type routerImpl struct {
	mu       sync.RWMutex
	handlers map[string]handlers.Handler // ключ: /команда, text:текст кнопки или callback:вид
	fallback handlers.Handler
}

// NewRouter создает новый роутер
func NewRouter() Router {
	return &routerImpl{
		handlers: make(map[string]handlers.Handler),
	}
}

// CommandKey ключ маршрута для команды
func CommandKey(command string) string {
	command = strings.TrimSpace(command)
	if !strings.HasPrefix(command, "/") {
		command = "/" + command
	}
	return strings.ToLower(command)
}

// CallbackKey ключ маршрута для вида callback
func CallbackKey(kind string) string {
	return "callback:" + kind
}

// TextKey ключ маршрута для текста сообщения.
// Отдельный префикс не дает тексту совпасть с ключом команды или callback
func TextKey(text string) string {
	return "text:" + strings.TrimSpace(text)
}

// RegisterHandler регистрирует хэндлер по его типу
func (r *routerImpl) RegisterHandler(handler handlers.Handler) {
	switch handler.GetType() {
	case handlers.TypeCommand:
		r.RegisterCommand(handler.GetCommand(), handler)
	case handlers.TypeCallback:
		r.RegisterCallback(handler.GetCommand(), handler)
	default:
		r.register(TextKey(handler.GetCommand()), handler)
	}
}

// RegisterCommand регистрирует команду
func (r *routerImpl) RegisterCommand(command string, handler handlers.Handler) {
	r.register(CommandKey(command), handler)
}

// RegisterCallback регистрирует вид callback
func (r *routerImpl) RegisterCallback(kind string, handler handlers.Handler) {
	r.register(CallbackKey(kind), handler)
}

// SetFallback задает хэндлер для нераспознанного ввода
func (r *routerImpl) SetFallback(handler handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = handler
	logger.Debug("Зарегистрирован fallback: %s", handler.GetName())
}

func (r *routerImpl) register(key string, handler handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.handlers[key]; ok {
		logger.Warn("⚠️ Хэндлер %s для '%s' заменен на %s", existing.GetName(), key, handler.GetName())
	}
	r.handlers[key] = handler
	logger.Debug("Зарегистрирован хэндлер: %s для %s: %s", handler.GetName(), handler.GetType(), key)
}

// Handle обрабатывает команду, текст или callback
func (r *routerImpl) Handle(ctx context.Context, key string, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	r.mu.RLock()
	handler, exists := r.handlers[key]
	if !exists && strings.HasPrefix(key, "/") {
		// /start@my_bot и /Start
		command, _, _ := strings.Cut(key, "@")
		handler, exists = r.handlers[CommandKey(command)]
	}
	if !exists {
		handler = r.fallback
		exists = handler != nil
	}
	r.mu.RUnlock()

	if !exists {
		return handlers.HandlerResult{}, fmt.Errorf("%w: '%s'", ErrHandlerNotFound, key)
	}
	return r.executeHandler(ctx, handler, key, params)
}

// executeHandler выполняет обработчик
func (r *routerImpl) executeHandler(ctx context.Context, handler handlers.Handler, key string, params handlers.HandlerParams) (handlers.HandlerResult, error) {
	logger.Debug("Вызов хэндлера: %s для: %s", handler.GetName(), key)

	result, err := handler.Execute(ctx, params)
	if err != nil {
		logger.Error("Ошибка в хэндлере %s для %s: %v", handler.GetName(), key, err)
		return handlers.HandlerResult{}, err
	}

	logger.Debug("Хэндлер %s для %s выполнен успешно", handler.GetName(), key)
	return result, nil
}

// GetHandler возвращает хэндлер по ключу
func (r *routerImpl) GetHandler(key string) (handlers.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, exists := r.handlers[key]
	return handler, exists
}

// GetCommands возвращает зарегистрированные команды (с /), отсортированные
func (r *routerImpl) GetCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]string, 0, len(r.handlers))
	for key := range r.handlers {
		if strings.HasPrefix(key, "/") {
			commands = append(commands, key)
		}
	}
	sort.Strings(commands)
	return commands
}

var _ Router = (*routerImpl)(nil)
