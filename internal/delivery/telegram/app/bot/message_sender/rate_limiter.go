// internal/delivery/telegram/app/bot/message_sender/rate_limiter.go
package message_sender

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimiter ограничитель частоты исходящих вызовов Telegram API
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter создает ограничитель на perSecond вызовов в секунду.
// perSecond <= 0 отключает ограничение
func NewRateLimiter(perSecond float64) *RateLimiter {
	if perSecond <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait блокирует до разрешения на отправку или отмены контекста
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := rl.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("ожидание rate limiter: %w", err)
	}
	return nil
}
