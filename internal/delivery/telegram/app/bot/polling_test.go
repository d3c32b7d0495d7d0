package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"subscription-group-bot/internal/delivery/telegram/app/bot/constants"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSource struct {
	ch       chan tgbotapi.Update
	once     sync.Once
	received tgbotapi.UpdateConfig
}

func (s *chanSource) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	s.received = cfg
	return s.ch
}

func (s *chanSource) StopReceivingUpdates() {
	s.once.Do(func() { close(s.ch) })
}

func TestPollingDispatchesUpdates(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
	source := &chanSource{ch: make(chan tgbotapi.Update, 10)}
	pc := NewPollingClient(source, b, 30)

	require.NoError(t, pc.Start(context.Background()))
	assert.Error(t, pc.Start(context.Background()))
	assert.Equal(t, 30, source.received.Timeout)

	for i := int64(1); i <= 5; i++ {
		source.ch <- textUpdate(privateChat(i), "/start")
	}

	require.Eventually(t, func() bool { return len(api.messages()) == 5 }, 2*time.Second, 10*time.Millisecond)
	pc.Stop()
	pc.Stop()

	for _, msg := range api.messages() {
		assert.Equal(t, constants.Messages.Welcome, msg.Text)
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	b := newTestBot(&fakeAPI{}, &fakeCheckout{}, &fakeReader{})
	b.router = nil // HandleUpdate паникует на nil роутере

	b.Dispatch(context.Background(), textUpdate(privateChat(testChatID), "/start"))
	b.Wait()

	assert.Len(t, b.sem, 0)
}

const testWebhookSecret = "s3cr3t-path_token-0123"

// serveWebhook пропускает запрос через chi, как в HTTP сервере
func serveWebhook(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Handle("/telegram/webhook/{"+WebhookSecretParam+"}", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec
}

func TestWebhookHandlerDispatches(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
	h := NewWebhookHandler(context.Background(), b, testWebhookSecret)

	body, err := json.Marshal(textUpdate(privateChat(testChatID), "/start"))
	require.NoError(t, err)

	rec := serveWebhook(h, http.MethodPost, "/telegram/webhook/"+testWebhookSecret, bytes.NewReader(body))
	assert.Equal(t, http.StatusOK, rec.Code)

	b.Wait()
	assert.Equal(t, constants.Messages.Welcome, api.lastMessage().Text)
}

func TestWebhookHandlerRejectsBadInput(t *testing.T) {
	b := newTestBot(&fakeAPI{}, &fakeCheckout{}, &fakeReader{})
	h := NewWebhookHandler(context.Background(), b, testWebhookSecret)

	rec := serveWebhook(h, http.MethodPost, "/telegram/webhook/"+testWebhookSecret, bytes.NewBufferString("{"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serveWebhook(h, http.MethodGet, "/telegram/webhook/"+testWebhookSecret, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWebhookHandlerRejectsWrongSecret(t *testing.T) {
	body, err := json.Marshal(textUpdate(privateChat(testChatID), "/start"))
	require.NoError(t, err)

	cases := []struct {
		name       string
		configured string
		target     string
	}{
		{"wrong secret", testWebhookSecret, "/telegram/webhook/forged-secret-0123456"},
		{"secret prefix", testWebhookSecret, "/telegram/webhook/" + testWebhookSecret[:8]},
		{"empty configured secret", "", "/telegram/webhook/anything"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{}
			b := newTestBot(api, &fakeCheckout{}, &fakeReader{})
			h := NewWebhookHandler(context.Background(), b, tc.configured)

			rec := serveWebhook(h, http.MethodPost, tc.target, bytes.NewReader(body))
			assert.Equal(t, http.StatusNotFound, rec.Code)

			b.Wait()
			assert.Empty(t, api.messages())
		})
	}

	// без маршрутизатора параметра нет
	h := NewWebhookHandler(context.Background(), newTestBot(&fakeAPI{}, &fakeCheckout{}, &fakeReader{}), testWebhookSecret)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterWebhook(t *testing.T) {
	api := &fakeAPI{}
	require.NoError(t, RegisterWebhook(api, "https://bot.example.com/telegram/webhook/", testWebhookSecret))
	require.Len(t, api.requests, 1)
	wh, ok := api.requests[0].(tgbotapi.WebhookConfig)
	require.True(t, ok)
	assert.Equal(t, "https://bot.example.com/telegram/webhook/"+testWebhookSecret, wh.URL.String())

	require.NoError(t, DeleteWebhook(api))
	assert.Len(t, api.requests, 2)
}
