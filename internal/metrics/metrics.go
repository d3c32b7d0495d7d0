// internal/metrics/metrics.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// HTTP метрики
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subbot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "subbot_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)

	// Платежи
	PaymentInitiationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subbot_payment_initiations_total",
			Help: "Checkout sessions requested from the payment gateway",
		},
		[]string{"plan", "result"},
	)
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subbot_payment_webhook_events_total",
			Help: "Payment webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)
	SubscriptionsActivatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subbot_subscriptions_activated_total",
			Help: "Subscriptions activated after a confirmed payment",
		},
		[]string{"plan"},
	)

	// Sweeper
	SweepRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subbot_sweep_runs_total",
			Help: "Expiry sweeper invocations",
		},
	)
	SweepRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subbot_sweep_removed_total",
			Help: "Expired subscriptions removed by the sweeper",
		},
	)
	SubscriptionsStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subbot_subscriptions_stored",
			Help: "Subscription records currently stored",
		},
	)
	SweepFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subbot_sweep_failures_total",
			Help: "Per-record sweeper failures by stage",
		},
		[]string{"stage"},
	)

	// Telegram
	TelegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subbot_telegram_updates_total",
			Help: "Telegram updates received by kind",
		},
		[]string{"kind"},
	)
	TelegramSendErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subbot_telegram_send_errors_total",
			Help: "Failed outbound Telegram API calls",
		},
	)
)

var initOnce sync.Once

// InitMetrics регистрирует метрики в стандартном реестре
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)

		prometheus.MustRegister(PaymentInitiationsTotal)
		prometheus.MustRegister(WebhookEventsTotal)
		prometheus.MustRegister(SubscriptionsActivatedTotal)

		prometheus.MustRegister(SweepRunsTotal)
		prometheus.MustRegister(SweepRemovedTotal)
		prometheus.MustRegister(SweepFailuresTotal)
		prometheus.MustRegister(SubscriptionsStored)

		prometheus.MustRegister(TelegramUpdatesTotal)
		prometheus.MustRegister(TelegramSendErrorsTotal)

		// Стандартные метрики Go уже зарегистрированы в DefaultRegisterer
		_ = prometheus.Register(collectors.NewBuildInfoCollector())
	})
}
