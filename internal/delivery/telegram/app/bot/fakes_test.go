package bot

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"subscription-group-bot/internal/core/domain/payment"
	"subscription-group-bot/internal/core/domain/subscription"
	"subscription-group-bot/internal/infrastructure/config"
	"subscription-group-bot/internal/infrastructure/persistence/postgres/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	testGroupID = int64(-1001234567890)
	testChatID  = int64(42)
)

type fakeAPI struct {
	mu         sync.Mutex
	sent       []tgbotapi.MessageConfig
	requests   []tgbotapi.Chattable
	sendErr    error
	banErr     error
	inviteErr  error
	inviteLink string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)

	switch c.(type) {
	case tgbotapi.BanChatMemberConfig:
		if f.banErr != nil {
			return nil, f.banErr
		}
	case tgbotapi.CreateChatInviteLinkConfig:
		if f.inviteErr != nil {
			return nil, f.inviteErr
		}
		raw, _ := json.Marshal(tgbotapi.ChatInviteLink{InviteLink: f.inviteLink, MemberLimit: 1})
		return &tgbotapi.APIResponse{Ok: true, Result: raw}, nil
	}
	return &tgbotapi.APIResponse{Ok: true, Result: json.RawMessage("true")}, nil
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tgbotapi.MessageConfig, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeAPI) lastMessage() tgbotapi.MessageConfig {
	msgs := f.messages()
	if len(msgs) == 0 {
		return tgbotapi.MessageConfig{}
	}
	return msgs[len(msgs)-1]
}

func (f *fakeAPI) requestsOf(match func(tgbotapi.Chattable) bool) []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.Chattable
	for _, r := range f.requests {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

type fakeCheckout struct {
	mu      sync.Mutex
	err     error
	calls   []subscription.Plan
	chatIDs []int64
}

func (f *fakeCheckout) StartCheckout(_ context.Context, chatID int64, _ string, plan subscription.Plan) (*payment.InitiateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, plan)
	f.chatIDs = append(f.chatIDs, chatID)
	if f.err != nil {
		return nil, f.err
	}
	return &payment.InitiateResult{
		AuthorizationURL: "https://checkout.paystack.com/abc",
		Reference:        "ref-123",
	}, nil
}

type fakeReader struct {
	subs map[int64]*models.Subscription
	err  error
}

func (f *fakeReader) GetSubscription(_ context.Context, chatID int64) (*models.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.subs[chatID], nil
}

var errTelegram = errors.New("telegram unavailable")

func newTestBot(api *fakeAPI, checkout *fakeCheckout, reader *fakeReader) *TelegramBot {
	loc, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		panic(err)
	}
	cfg := config.TelegramConfig{GroupID: testGroupID, MaxConcurrent: 4}
	b := NewTelegramBot(api, cfg, Dependencies{
		Catalog:       subscription.MustDefaultCatalog(),
		Checkout:      checkout,
		Subscriptions: reader,
		Location:      loc,
	})
	b.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return b
}

func privateChat(id int64) *tgbotapi.Chat {
	return &tgbotapi.Chat{ID: id, Type: "private"}
}

func textUpdate(chat *tgbotapi.Chat, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: chat.ID, UserName: "member"},
		Chat:      chat,
		Text:      text,
	}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return tgbotapi.Update{UpdateID: 1, Message: msg}
}

func callbackUpdate(chat *tgbotapi.Chat, data string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: chat.ID, UserName: "member"},
			Message: &tgbotapi.Message{MessageID: 5, Chat: chat},
			Data:    data,
		},
	}
}
