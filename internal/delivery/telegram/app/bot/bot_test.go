package bot

import (
	"context"
	"testing"
	"time"

	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"
	"subscription-group-bot/internal/delivery/telegram/app/bot/conversation"
	"subscription-group-bot/internal/infrastructure/persistence/postgres/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inlineData(t *testing.T, markup interface{}) []string {
	t.Helper()
	kb, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "expected inline keyboard, got %T", markup)

	var data []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != nil {
				data = append(data, *btn.CallbackData)
			}
		}
	}
	return data
}

func TestStartShowsMainMenu(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
	b.tracker.Set(testChatID, conversation.Session{State: conversation.StatePlanSelection})

	require.NoError(t, b.HandleUpdate(context.Background(), textUpdate(privateChat(testChatID), "/start")))

	msg := api.lastMessage()
	assert.Equal(t, testChatID, msg.ChatID)
	assert.Equal(t, constants.Messages.Welcome, msg.Text)

	kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.ResizeKeyboard)
	require.Len(t, kb.Keyboard, 2)
	assert.Equal(t, constants.ButtonTexts.JoinGroup, kb.Keyboard[0][0].Text)
	assert.Equal(t, constants.ButtonTexts.SubscriptionStatus, kb.Keyboard[1][0].Text)
	assert.Equal(t, conversation.StateIdle, b.tracker.Get(testChatID).State)
}

func TestJoinGroupShowsPlans(t *testing.T) {
	for _, text := range []string{constants.ButtonTexts.JoinGroup, "/plans"} {
		api := &fakeAPI{}
		b := newTestBot(api, &fakeCheckout{}, &fakeReader{})

		require.NoError(t, b.HandleUpdate(context.Background(), textUpdate(privateChat(testChatID), text)))

		msg := api.lastMessage()
		assert.Equal(t, constants.Messages.ChoosePlan, msg.Text)
		assert.Equal(t, []string{"plan|15 Minutes", "plan|30 Minutes", "plan|1 Hour"}, inlineData(t, msg.ReplyMarkup))
		assert.Equal(t, conversation.StatePlanSelection, b.tracker.Get(testChatID).State)
	}
}

func TestSelectPlanStartsCheckout(t *testing.T) {
	api := &fakeAPI{}
	checkout := &fakeCheckout{}
	b := newTestBot(api, checkout, &fakeReader{})

	require.NoError(t, b.HandleUpdate(context.Background(), callbackUpdate(privateChat(testChatID), "plan|30 Minutes")))

	require.Len(t, checkout.calls, 1)
	assert.Equal(t, "30 Minutes", checkout.calls[0].Name)
	assert.Equal(t, testChatID, checkout.chatIDs[0])

	msg := api.lastMessage()
	assert.Contains(t, msg.Text, "25,000 NGN")
	kb := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.Len(t, kb.InlineKeyboard, 2)
	require.NotNil(t, kb.InlineKeyboard[0][0].URL)
	assert.Equal(t, "https://checkout.paystack.com/abc", *kb.InlineKeyboard[0][0].URL)
	assert.Equal(t, []string{"cancel|ref-123"}, inlineData(t, msg.ReplyMarkup))

	session := b.tracker.Get(testChatID)
	assert.Equal(t, conversation.StateAwaitingPayment, session.State)
	assert.Equal(t, "ref-123", session.Reference)

	answered := api.requestsOf(func(c tgbotapi.Chattable) bool {
		_, ok := c.(tgbotapi.CallbackConfig)
		return ok
	})
	assert.Len(t, answered, 1)
}

func TestSelectPlanGatewayFailure(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{err: assert.AnError}, &fakeReader{})
	b.tracker.Set(testChatID, conversation.Session{State: conversation.StatePlanSelection})

	require.NoError(t, b.HandleUpdate(context.Background(), callbackUpdate(privateChat(testChatID), "plan|1 Hour")))

	assert.Equal(t, constants.Messages.PaymentFailed, api.lastMessage().Text)
	assert.Equal(t, conversation.StateIdle, b.tracker.Get(testChatID).State)
}

func TestSelectUnknownPlanShowsPlansAgain(t *testing.T) {
	api := &fakeAPI{}
	checkout := &fakeCheckout{}
	b := newTestBot(api, checkout, &fakeReader{})

	require.NoError(t, b.HandleUpdate(context.Background(), callbackUpdate(privateChat(testChatID), "plan|Forever")))

	assert.Empty(t, checkout.calls)
	assert.Equal(t, constants.Messages.UnknownPlan, api.lastMessage().Text)
	assert.Equal(t, conversation.StatePlanSelection, b.tracker.Get(testChatID).State)
}

func TestCancelReturnsToIdle(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
	b.tracker.Set(testChatID, conversation.Session{State: conversation.StateAwaitingPayment, Reference: "ref-123"})

	require.NoError(t, b.HandleUpdate(context.Background(), callbackUpdate(privateChat(testChatID), "cancel|ref-123")))

	assert.Equal(t, constants.Messages.PaymentCancelled, api.lastMessage().Text)
	assert.Equal(t, conversation.StateIdle, b.tracker.Get(testChatID).State)
}

func TestRenewShowsPlans(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})

	require.NoError(t, b.HandleUpdate(context.Background(), callbackUpdate(privateChat(testChatID), "renew|42")))

	assert.Equal(t, constants.Messages.ChoosePlan, api.lastMessage().Text)
	assert.Equal(t, conversation.StatePlanSelection, b.tracker.Get(testChatID).State)
}

func TestUnknownCallbackIsAnsweredWithGuidance(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
	b.tracker.Set(testChatID, conversation.Session{State: conversation.StatePlanSelection})

	require.NoError(t, b.HandleUpdate(context.Background(), callbackUpdate(privateChat(testChatID), "refund|x")))

	assert.Equal(t, constants.Messages.UnknownAction, api.lastMessage().Text)
	assert.Equal(t, conversation.StatePlanSelection, b.tracker.Get(testChatID).State)
}

func TestStatusWithoutSubscription(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})

	require.NoError(t, b.HandleUpdate(context.Background(), textUpdate(privateChat(testChatID), constants.ButtonTexts.SubscriptionStatus)))

	assert.Equal(t, constants.Messages.NoSubscription, api.lastMessage().Text)
}

func TestStatusShowsLagosTime(t *testing.T) {
	api := &fakeAPI{}
	end := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	reader := &fakeReader{subs: map[int64]*models.Subscription{testChatID: {ChatID: testChatID, EndDate: end}}}
	b := newTestBot(api, &fakeCheckout{}, reader)

	for _, text := range []string{constants.ButtonTexts.SubscriptionStatus, "/status"} {
		require.NoError(t, b.HandleUpdate(context.Background(), textUpdate(privateChat(testChatID), text)))
		msg := api.lastMessage().Text
		assert.Contains(t, msg, "2024-06-01")
		assert.Contains(t, msg, "10:30")
	}
}

func TestStatusStoreFailure(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{err: assert.AnError})

	require.NoError(t, b.HandleUpdate(context.Background(), textUpdate(privateChat(testChatID), "/status")))
	assert.Equal(t, constants.Messages.StatusFailed, api.lastMessage().Text)
}

func TestUnknownTextKeepsState(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
	b.tracker.Set(testChatID, conversation.Session{State: conversation.StatePlanSelection})

	require.NoError(t, b.HandleUpdate(context.Background(), textUpdate(privateChat(testChatID), "hello there")))

	assert.Equal(t, constants.Messages.Guidance, api.lastMessage().Text)
	assert.Equal(t, conversation.StatePlanSelection, b.tracker.Get(testChatID).State)
}

func TestTextLookingLikeCallbackKeyGetsGuidance(t *testing.T) {
	for _, text := range []string{"callback:cancel", "callback:plan", "callback:renew"} {
		t.Run(text, func(t *testing.T) {
			api := &fakeAPI{}
			b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
			session := conversation.Session{State: conversation.StateAwaitingPayment, Plan: "1 Hour", Reference: "ref-123"}
			b.tracker.Set(testChatID, session)

			require.NoError(t, b.HandleUpdate(context.Background(), textUpdate(privateChat(testChatID), text)))

			assert.Equal(t, constants.Messages.Guidance, api.lastMessage().Text)
			assert.Equal(t, session, b.tracker.Get(testChatID))
		})
	}
}

func TestGroupUpdatesAreIgnored(t *testing.T) {
	group := &tgbotapi.Chat{ID: testGroupID, Type: "supergroup"}
	updates := []tgbotapi.Update{
		textUpdate(group, "/start"),
		textUpdate(group, constants.ButtonTexts.JoinGroup),
		callbackUpdate(group, "plan|1 Hour"),
		textUpdate(&tgbotapi.Chat{ID: 7, Type: "channel"}, "hi"),
	}

	for _, u := range updates {
		api := &fakeAPI{}
		checkout := &fakeCheckout{}
		b := newTestBot(api, checkout, &fakeReader{})

		require.NoError(t, b.HandleUpdate(context.Background(), u))

		assert.Empty(t, api.messages())
		assert.Empty(t, api.requestsOf(func(tgbotapi.Chattable) bool { return true }))
		assert.Empty(t, checkout.calls)
		assert.Equal(t, 0, b.tracker.Len())
	}
}

func TestSendErrorIsReturned(t *testing.T) {
	api := &fakeAPI{sendErr: errTelegram}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})

	err := b.HandleUpdate(context.Background(), textUpdate(privateChat(testChatID), "/start"))
	assert.ErrorIs(t, err, errTelegram)
}

func TestRevokeMembershipBansThenUnbans(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})

	require.NoError(t, b.RevokeMembership(context.Background(), testChatID))

	require.Len(t, api.requests, 2)
	ban, ok := api.requests[0].(tgbotapi.BanChatMemberConfig)
	require.True(t, ok)
	assert.Equal(t, testGroupID, ban.ChatID)
	assert.Equal(t, testChatID, ban.UserID)

	unban, ok := api.requests[1].(tgbotapi.UnbanChatMemberConfig)
	require.True(t, ok)
	assert.True(t, unban.OnlyIfBanned)
	assert.Equal(t, testChatID, unban.UserID)
}

func TestRevokeMembershipFailure(t *testing.T) {
	api := &fakeAPI{banErr: errTelegram}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})

	err := b.RevokeMembership(context.Background(), testChatID)
	assert.ErrorIs(t, err, errTelegram)
	assert.Len(t, api.requests, 1)
}

func TestSendRenewalPrompt(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
	b.tracker.Set(testChatID, conversation.Session{State: conversation.StateAwaitingPayment})

	require.NoError(t, b.SendRenewalPrompt(context.Background(), testChatID))

	msg := api.lastMessage()
	assert.Equal(t, constants.Messages.Expired, msg.Text)
	assert.Equal(t, []string{"renew|42"}, inlineData(t, msg.ReplyMarkup))
	assert.Equal(t, conversation.StateIdle, b.tracker.Get(testChatID).State)
}

func TestSendPaymentConfirmationWithInviteLink(t *testing.T) {
	api := &fakeAPI{inviteLink: "https://t.me/+single"}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
	b.tracker.Set(testChatID, conversation.Session{State: conversation.StateAwaitingPayment})
	sub := &models.Subscription{ChatID: testChatID, PlanName: "1 Hour", EndDate: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}

	require.NoError(t, b.SendPaymentConfirmation(context.Background(), sub))

	links := api.requestsOf(func(c tgbotapi.Chattable) bool {
		_, ok := c.(tgbotapi.CreateChatInviteLinkConfig)
		return ok
	})
	require.Len(t, links, 1)
	cfg := links[0].(tgbotapi.CreateChatInviteLinkConfig)
	assert.Equal(t, testGroupID, cfg.ChatID)
	assert.Equal(t, 1, cfg.MemberLimit)

	msg := api.lastMessage()
	assert.Contains(t, msg.Text, "https://t.me/+single")
	assert.Contains(t, msg.Text, "2024-06-01")
	assert.Contains(t, msg.Text, "11:00")
	assert.Equal(t, conversation.StateIdle, b.tracker.Get(testChatID).State)
}

func TestSendPaymentConfirmationWithoutInviteLink(t *testing.T) {
	api := &fakeAPI{inviteErr: errTelegram}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
	sub := &models.Subscription{ChatID: testChatID, PlanName: "1 Hour", EndDate: time.Now()}

	require.NoError(t, b.SendPaymentConfirmation(context.Background(), sub))

	msg := api.lastMessage()
	assert.Contains(t, msg.Text, "Payment received")
	assert.Nil(t, msg.ReplyMarkup)
}

func TestSetMyCommands(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})

	require.NoError(t, b.SetMyCommands(context.Background()))

	reqs := api.requestsOf(func(c tgbotapi.Chattable) bool {
		_, ok := c.(tgbotapi.SetMyCommandsConfig)
		return ok
	})
	require.Len(t, reqs, 1)
	cmds := reqs[0].(tgbotapi.SetMyCommandsConfig).Commands
	require.Len(t, cmds, 4)
	assert.Equal(t, "start", cmds[0].Command)
}
