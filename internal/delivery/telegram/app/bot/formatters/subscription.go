// internal/delivery/telegram/app/bot/formatters/subscription.go
package formatters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"subscription-group-bot/internal/core/domain/subscription"
	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/infrastructure/persistence/postgres/models"
)

// SubscriptionFormatter форматирует сообщения о подписке в часовом поясе пользователя
type SubscriptionFormatter struct {
	location *time.Location
}

// NewSubscriptionFormatter создает форматтер, nil означает UTC
func NewSubscriptionFormatter(location *time.Location) *SubscriptionFormatter {
	if location == nil {
		location = time.UTC
	}
	return &SubscriptionFormatter{location: location}
}

// Location часовой пояс отображения
func (f *SubscriptionFormatter) Location() *time.Location {
	return f.location
}

// DateAndTime дата и время окончания в часовом поясе отображения
func (f *SubscriptionFormatter) DateAndTime(t time.Time) (string, string) {
	local := t.In(f.location)
	return local.Format(constants.DateLayout), local.Format(constants.TimeLayout)
}

// Status текст статуса подписки, nil означает отсутствие подписки
func (f *SubscriptionFormatter) Status(sub *models.Subscription) string {
	if sub == nil {
		return constants.Messages.NoSubscription
	}
	date, clock := f.DateAndTime(sub.EndDate)
	return fmt.Sprintf(constants.Messages.StatusFormat, date, clock)
}

// Confirmation текст подтверждения оплаты, ссылка добавляется если получена
func (f *SubscriptionFormatter) Confirmation(sub *models.Subscription, inviteLink string) string {
	date, clock := f.DateAndTime(sub.EndDate)
	text := fmt.Sprintf(constants.Messages.ConfirmationFormat, sub.PlanName, date, clock)
	if inviteLink != "" {
		text += fmt.Sprintf(constants.Messages.InviteLinkFormat, inviteLink)
	}
	return text
}

// Checkout текст со ссылкой на оплату выбранного плана
func (f *SubscriptionFormatter) Checkout(plan subscription.Plan) string {
	return fmt.Sprintf(constants.Messages.CheckoutFormat, plan.Name, FormatPrice(plan.Price))
}

// FormatPrice цена в NGN с разделителями тысяч: 15,000 NGN
func FormatPrice(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	negative := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if negative {
		return "-" + b.String() + " NGN"
	}
	return b.String() + " NGN"
}
