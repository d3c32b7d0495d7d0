// internal/delivery/telegram/app/bot/constants/callbacks.go
package constants

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownAction callback_data не удалось разобрать
var ErrUnknownAction = errors.New("unknown callback action")

// ActionKind вид действия inline-кнопки
type ActionKind string

const (
	ActionSelectPlan ActionKind = "plan"
	ActionCancel     ActionKind = "cancel"
	ActionRenew      ActionKind = "renew"
)

// Разделитель вида и аргумента в callback_data
const actionSeparator = "|"

// Telegram ограничивает callback_data 64 байтами
const maxCallbackDataLen = 64

// Action разобранное действие inline-кнопки.
// Заполнено только поле, соответствующее Kind
type Action struct {
	Kind      ActionKind
	Plan      string
	Reference string
	ChatID    int64
}

// SelectPlan действие выбора плана
func SelectPlan(plan string) Action {
	return Action{Kind: ActionSelectPlan, Plan: plan}
}

// Cancel действие отмены платежа
func Cancel(reference string) Action {
	return Action{Kind: ActionCancel, Reference: reference}
}

// Renew действие продления подписки
func Renew(chatID int64) Action {
	return Action{Kind: ActionRenew, ChatID: chatID}
}

// Encode возвращает callback_data для кнопки
func (a Action) Encode() string {
	switch a.Kind {
	case ActionSelectPlan:
		return string(a.Kind) + actionSeparator + a.Plan
	case ActionCancel:
		return string(a.Kind) + actionSeparator + a.Reference
	case ActionRenew:
		return string(a.Kind) + actionSeparator + strconv.FormatInt(a.ChatID, 10)
	default:
		return ""
	}
}

// ParseAction разбирает callback_data в действие
func ParseAction(data string) (Action, error) {
	if data == "" || len(data) > maxCallbackDataLen {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}

	kind, arg, found := strings.Cut(data, actionSeparator)
	if !found || arg == "" {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}

	switch ActionKind(kind) {
	case ActionSelectPlan:
		return SelectPlan(arg), nil
	case ActionCancel:
		return Cancel(arg), nil
	case ActionRenew:
		chatID, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("%w: неверный chat id %q", ErrUnknownAction, arg)
		}
		return Renew(chatID), nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, data)
	}
}
