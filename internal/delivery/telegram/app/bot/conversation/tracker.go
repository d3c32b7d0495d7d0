// internal/delivery/telegram/app/bot/conversation/tracker.go
package conversation

import "sync"

// State шаг диалога с пользователем
type State string

const (
	StateIdle            State = "idle"
	StatePlanSelection   State = "plan_selection_shown"
	StateAwaitingPayment State = "awaiting_payment"
)

// Session состояние диалога одного чата
type Session struct {
	State     State
	Plan      string
	Reference string
}

// Tracker хранит состояния диалогов в памяти процесса
type Tracker struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewTracker создает трекер
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[int64]Session)}
}

// Get возвращает сессию чата, для неизвестного чата StateIdle
func (t *Tracker) Get(chatID int64) Session {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if s, ok := t.sessions[chatID]; ok {
		return s
	}
	return Session{State: StateIdle}
}

// Set сохраняет сессию чата. Переход в idle освобождает запись
func (t *Tracker) Set(chatID int64, s Session) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.State == StateIdle || s.State == "" {
		delete(t.sessions, chatID)
		return
	}
	t.sessions[chatID] = s
}

// Reset возвращает чат в idle
func (t *Tracker) Reset(chatID int64) {
	t.Set(chatID, Session{State: StateIdle})
}

// Len количество чатов не в idle
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
