// internal/delivery/http/middleware.go
package http

import (
	"net/http"
	"strconv"
	"time"

	"subscription-group-bot/internal/metrics"
	"subscription-group-bot/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Метка пути для запросов, не совпавших ни с одним маршрутом
const unmatchedRoute = "unmatched"

// MetricsMiddleware собирает метрики для HTTP запросов
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			duration := time.Since(start).Seconds()
			path := routeLabel(r)
			code := ww.Status()
			if code == 0 {
				code = http.StatusOK
			}
			status := strconv.Itoa(code)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)

			logger.Debug("🌐 %s %s → %s (%.3fs)", r.Method, r.URL.Path, status, duration)
		}()

		next.ServeHTTP(ww, r)
	})
}

// routeLabel шаблон маршрута chi, сырой путь в метки не попадает
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unmatchedRoute
}
