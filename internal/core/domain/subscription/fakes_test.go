package subscription

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"subscription-group-bot/internal/infrastructure/persistence/postgres/models"
)

type memRepo struct {
	mu        sync.Mutex
	subs      map[int64]models.Subscription
	upserts   int
	deleteErr map[int64]error
	listErr   error

	// вызываются один раз после чтения, вне блокировки
	onGet  func()
	onList func()
}

func newMemRepo() *memRepo {
	return &memRepo{subs: make(map[int64]models.Subscription), deleteErr: make(map[int64]error)}
}

func (r *memRepo) GetByChatID(_ context.Context, chatID int64) (*models.Subscription, error) {
	r.mu.Lock()
	sub, ok := r.subs[chatID]
	hook := r.onGet
	r.onGet = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (r *memRepo) Upsert(_ context.Context, sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.subs[sub.ChatID] = *sub
	return nil
}

func (r *memRepo) DeleteExpired(_ context.Context, chatID int64, cutoff time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.deleteErr[chatID]; err != nil {
		return false, err
	}
	sub, ok := r.subs[chatID]
	if !ok || sub.EndDate.After(cutoff) {
		return false, nil
	}
	delete(r.subs, chatID)
	return true, nil
}

func (r *memRepo) ListExpired(_ context.Context, now time.Time) ([]*models.Subscription, error) {
	r.mu.Lock()
	if r.listErr != nil {
		r.mu.Unlock()
		return nil, r.listErr
	}
	var out []*models.Subscription
	for _, sub := range r.subs {
		if !sub.EndDate.After(now) {
			s := sub
			out = append(out, &s)
		}
	}
	hook := r.onList
	r.onList = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs), nil
}

type recorder struct {
	mu       sync.Mutex
	notified []int64
	failFor  map[int64]bool
}

func newRecorder() *recorder {
	return &recorder{failFor: make(map[int64]bool)}
}

func (r *recorder) SendRenewalPrompt(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[chatID] {
		return errors.New("user blocked the bot")
	}
	r.notified = append(r.notified, chatID)
	return nil
}

type gateRecorder struct {
	mu       sync.Mutex
	revoked  []int64
	failFor  map[int64]bool
	onRevoke func(userID int64)
}

func newGateRecorder() *gateRecorder {
	return &gateRecorder{failFor: make(map[int64]bool)}
}

func (g *gateRecorder) RevokeMembership(_ context.Context, userID int64) error {
	g.mu.Lock()
	hook := g.onRevoke
	if g.failFor[userID] {
		g.mu.Unlock()
		return errors.New("not enough rights")
	}
	g.revoked = append(g.revoked, userID)
	g.mu.Unlock()

	if hook != nil {
		hook(userID)
	}
	return nil
}
