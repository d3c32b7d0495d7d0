// internal/delivery/telegram/app/bot/buttons/builder.go
package buttons

import (
	"subscription-group-bot/internal/core/domain/subscription"
	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ButtonBuilder - построитель клавиатур
type ButtonBuilder struct{}

// NewButtonBuilder создает новый построитель кнопок
func NewButtonBuilder() *ButtonBuilder {
	return &ButtonBuilder{}
}

// MainMenuKeyboard постоянная клавиатура главного меню
func (b *ButtonBuilder) MainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(constants.ButtonTexts.JoinGroup)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(constants.ButtonTexts.SubscriptionStatus)),
	)
	keyboard.ResizeKeyboard = true
	keyboard.InputFieldPlaceholder = constants.Messages.KeyboardPlaceholder
	return keyboard
}

// PlansKeyboard inline-клавиатура выбора плана, по кнопке в строке
func (b *ButtonBuilder) PlansKeyboard(plans []subscription.Plan) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(plans))
	for _, plan := range plans {
		label := plan.Label
		if label == "" {
			label = plan.Name
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, constants.SelectPlan(plan.Name).Encode()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CheckoutKeyboard кнопка оплаты и кнопка отмены
func (b *ButtonBuilder) CheckoutKeyboard(authorizationURL, reference string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(constants.ButtonTexts.Pay, authorizationURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(constants.ButtonTexts.Cancel, constants.Cancel(reference).Encode()),
		),
	)
}

// RenewKeyboard кнопка продления после истечения подписки
func (b *ButtonBuilder) RenewKeyboard(chatID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(constants.ButtonTexts.Renew, constants.Renew(chatID).Encode()),
		),
	)
}

// InviteKeyboard кнопка перехода в группу по ссылке-приглашению
func (b *ButtonBuilder) InviteKeyboard(inviteLink string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(constants.ButtonTexts.OpenGroup, inviteLink),
		),
	)
}
