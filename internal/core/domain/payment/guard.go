// internal/core/domain/payment/guard.go
package payment

import (
	"context"
	"sync"
	"time"
)

// ReferenceGuard отмечает ссылки платежей, уже взятые в обработку
type ReferenceGuard interface {
	// Claim возвращает false, если ссылка уже была заявлена
	Claim(ctx context.Context, reference string) (bool, error)
	// Release снимает отметку (обработка не удалась, повтор должен пройти)
	Release(ctx context.Context, reference string) error
}

// Claimer хранилище с атомарной операцией set-if-absent (redis.Cache)
type Claimer interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// CacheGuard ReferenceGuard поверх Redis
type CacheGuard struct {
	store Claimer
	ttl   time.Duration
}

// NewCacheGuard создает guard поверх Redis
func NewCacheGuard(store Claimer, ttl time.Duration) *CacheGuard {
	return &CacheGuard{store: store, ttl: ttl}
}

func (g *CacheGuard) key(reference string) string {
	return "payment:reference:" + reference
}

func (g *CacheGuard) Claim(ctx context.Context, reference string) (bool, error) {
	return g.store.SetNX(ctx, g.key(reference), time.Now().Unix(), g.ttl)
}

func (g *CacheGuard) Release(ctx context.Context, reference string) error {
	return g.store.Delete(ctx, g.key(reference))
}

// MemoryGuard ReferenceGuard в памяти процесса
type MemoryGuard struct {
	mu      sync.Mutex
	claimed map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryGuard создает guard в памяти
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		claimed: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (g *MemoryGuard) Claim(_ context.Context, reference string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.evict(now)

	if _, ok := g.claimed[reference]; ok {
		return false, nil
	}
	g.claimed[reference] = now
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, reference string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, reference)
	return nil
}

func (g *MemoryGuard) evict(now time.Time) {
	if g.ttl <= 0 {
		return
	}
	for ref, at := range g.claimed {
		if now.Sub(at) > g.ttl {
			delete(g.claimed, ref)
		}
	}
}
