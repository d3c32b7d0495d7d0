// internal/delivery/telegram/app/bot/bot.go
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"subscription-group-bot/internal/delivery/telegram/app/bot/buttons"
	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/conversation"
	"subscription-group-bot/internal/delivery/telegram/app/bot/formatters"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers"
	"subscription-group-bot/internal/delivery/telegram/app/bot/handlers/router"
	"subscription-group-bot/internal/delivery/telegram/app/bot/message_sender"
	"subscription-group-bot/internal/delivery/telegram/app/bot/middlewares"
	"subscription-group-bot/internal/infrastructure/config"
	"subscription-group-bot/internal/infrastructure/persistence/postgres/models"
	"subscription-group-bot/internal/metrics"
	"subscription-group-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Срок жизни одноразовой ссылки-приглашения
const inviteLinkTTL = 24 * time.Hour

// TelegramBot - бот закрытой группы по подписке
type TelegramBot struct {
	sender     message_sender.MessageSender
	router     router.Router
	middleware *middlewares.PrivateChatMiddleware
	tracker    *conversation.Tracker
	buttons    *buttons.ButtonBuilder
	formatter  *formatters.SubscriptionFormatter

	groupID int64
	now     func() time.Time

	// ограничение одновременно обрабатываемых обновлений
	sem chan struct{}
	wg  sync.WaitGroup

	startupTime time.Time
}

// Dependencies зависимости для TelegramBot
type Dependencies struct {
	Catalog       handlers.PlanCatalog
	Checkout      handlers.CheckoutStarter
	Subscriptions handlers.SubscriptionReader
	Location      *time.Location
}

// NewTelegramBot создает бота поверх клиента Telegram API
func NewTelegramBot(api message_sender.BotAPI, cfg config.TelegramConfig, deps Dependencies) *TelegramBot {
	builder := buttons.NewButtonBuilder()
	formatter := formatters.NewSubscriptionFormatter(deps.Location)

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &TelegramBot{
		sender:      message_sender.NewMessageSender(api, cfg.RateLimit),
		router:      RegisterAllHandlers(deps, builder, formatter),
		middleware:  middlewares.NewPrivateChatMiddleware(),
		tracker:     conversation.NewTracker(),
		buttons:     builder,
		formatter:   formatter,
		groupID:     cfg.GroupID,
		now:         time.Now,
		sem:         make(chan struct{}, maxConcurrent),
		startupTime: time.Now(),
	}
}

// HandleUpdate обрабатывает одно обновление синхронно
func (b *TelegramBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	route, err := b.middleware.ProcessUpdate(update)
	metrics.TelegramUpdatesTotal.WithLabelValues(route.Kind).Inc()

	switch {
	case errors.Is(err, middlewares.ErrIgnoredUpdate):
		return nil
	case errors.Is(err, constants.ErrUnknownAction):
		logger.Warn("⚠️ Неизвестный callback от чата %d: %v", route.Params.ChatID, err)
		b.answerCallback(ctx, route.Params.CallbackID)
		return b.sender.SendTextMessage(ctx, route.Params.ChatID, constants.Messages.UnknownAction, nil)
	case err != nil:
		return err
	}

	params := route.Params
	params.Session = b.tracker.Get(params.ChatID)

	result, err := b.router.Handle(ctx, route.Key, params)
	b.answerCallback(ctx, params.CallbackID)
	if err != nil {
		logger.Error("❌ Ошибка обработки '%s' для чата %d: %v", route.Key, params.ChatID, err)
		return b.sender.SendTextMessage(ctx, params.ChatID, constants.Messages.GenericError, nil)
	}

	if result.NextStep != nil {
		b.tracker.Set(params.ChatID, *result.NextStep)
	}
	if result.Message == "" {
		return nil
	}
	return b.sender.SendTextMessage(ctx, params.ChatID, result.Message, result.Keyboard)
}

// answerCallback убирает индикатор загрузки на кнопке, ошибка не критична
func (b *TelegramBot) answerCallback(ctx context.Context, callbackID string) {
	if err := b.sender.AnswerCallback(ctx, callbackID, ""); err != nil {
		logger.Debug("Не удалось ответить на callback: %v", err)
	}
}

// SendRenewalPrompt сообщает об истечении подписки и предлагает продлить
func (b *TelegramBot) SendRenewalPrompt(ctx context.Context, chatID int64) error {
	b.tracker.Reset(chatID)
	return b.sender.SendTextMessage(ctx, chatID, constants.Messages.Expired, b.buttons.RenewKeyboard(chatID))
}

// RevokeMembership исключает пользователя из группы.
// После бана сразу снимаем блокировку, чтобы пользователь мог вернуться после оплаты
func (b *TelegramBot) RevokeMembership(ctx context.Context, userID int64) error {
	member := tgbotapi.ChatMemberConfig{ChatID: b.groupID, UserID: userID}

	ban := tgbotapi.BanChatMemberConfig{ChatMemberConfig: member}
	if _, err := b.sender.Request(ctx, ban); err != nil {
		return fmt.Errorf("ошибка исключения пользователя %d из группы: %w", userID, err)
	}

	unban := tgbotapi.UnbanChatMemberConfig{ChatMemberConfig: member, OnlyIfBanned: true}
	if _, err := b.sender.Request(ctx, unban); err != nil {
		return fmt.Errorf("ошибка снятия блокировки пользователя %d: %w", userID, err)
	}

	logger.Info("🚪 Пользователь %d исключен из группы %d", userID, b.groupID)
	return nil
}

// SendPaymentConfirmation подтверждает оплату и отправляет одноразовую ссылку в группу
func (b *TelegramBot) SendPaymentConfirmation(ctx context.Context, sub *models.Subscription) error {
	b.tracker.Reset(sub.ChatID)

	link, err := b.CreateInviteLink(ctx, sub.ChatID)
	if err != nil {
		logger.Warn("⚠️ Не удалось создать ссылку-приглашение для чата %d: %v", sub.ChatID, err)
	}

	var keyboard interface{}
	if link != "" {
		keyboard = b.buttons.InviteKeyboard(link)
	}
	return b.sender.SendTextMessage(ctx, sub.ChatID, b.formatter.Confirmation(sub, link), keyboard)
}

// CreateInviteLink создает ссылку в группу на одно вступление
func (b *TelegramBot) CreateInviteLink(ctx context.Context, chatID int64) (string, error) {
	cfg := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: b.groupID},
		Name:        fmt.Sprintf("sub-%d", chatID),
		ExpireDate:  int(b.now().Add(inviteLinkTTL).Unix()),
		MemberLimit: 1,
	}

	resp, err := b.sender.Request(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("ошибка создания ссылки: %w", err)
	}

	var invite tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &invite); err != nil {
		return "", fmt.Errorf("ошибка разбора ссылки: %w", err)
	}
	return invite.InviteLink, nil
}

// SetMyCommands устанавливает меню команд Telegram
func (b *TelegramBot) SetMyCommands(ctx context.Context) error {
	commands := make([]tgbotapi.BotCommand, 0, len(constants.CommandOrder))
	for _, name := range constants.CommandOrder {
		commands = append(commands, tgbotapi.BotCommand{
			Command:     name,
			Description: constants.CommandDescriptions[name],
		})
	}

	if _, err := b.sender.Request(ctx, tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("ошибка установки меню команд: %w", err)
	}

	logger.Info("✅ Меню команд установлено (%d команд)", len(commands))
	return nil
}

// Tracker состояния диалогов
func (b *TelegramBot) Tracker() *conversation.Tracker {
	return b.tracker
}

// Uptime время работы бота
func (b *TelegramBot) Uptime() time.Duration {
	return time.Since(b.startupTime)
}
