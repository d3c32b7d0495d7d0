// internal/core/domain/subscription/types.go
package subscription

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnknownPlan план отсутствует в каталоге
	ErrUnknownPlan = errors.New("unknown subscription plan")
	// ErrReferenceAlreadyApplied платеж с этой ссылкой уже активировал текущий период
	ErrReferenceAlreadyApplied = errors.New("payment reference already applied")
)

// Plan тарифный план. Цена в основных единицах валюты (NGN)
type Plan struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Price    int64         `json:"price"`
	Label    string        `json:"label"`
}

// DefaultPlans каталог планов по умолчанию
func DefaultPlans() []Plan {
	return []Plan{
		{Name: "15 Minutes", Duration: 15 * time.Minute, Price: 15000, Label: "15 minutes: 15,000 NGN"},
		{Name: "30 Minutes", Duration: 30 * time.Minute, Price: 25000, Label: "30 minutes: 25,000 NGN"},
		{Name: "1 Hour", Duration: 60 * time.Minute, Price: 95000, Label: "1 Hour: 95,000 NGN"},
	}
}

// Catalog неизменяемый каталог планов, порядок сохраняется для отображения
type Catalog struct {
	plans  []Plan
	byName map[string]Plan
}

// NewCatalog создает каталог и проверяет планы
func NewCatalog(plans ...Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("каталог планов пуст")
	}

	c := &Catalog{byName: make(map[string]Plan, len(plans))}
	for _, p := range plans {
		if p.Name == "" {
			return nil, fmt.Errorf("план без названия")
		}
		if p.Duration <= 0 || p.Price <= 0 {
			return nil, fmt.Errorf("план %q: длительность и цена должны быть положительными", p.Name)
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("план %q указан дважды", p.Name)
		}
		if p.Label == "" {
			p.Label = p.Name
		}
		c.byName[p.Name] = p
		c.plans = append(c.plans, p)
	}
	return c, nil
}

// MustDefaultCatalog каталог планов по умолчанию
func MustDefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultPlans()...)
	if err != nil {
		panic(err)
	}
	return c
}

// Get возвращает план по названию
func (c *Catalog) Get(name string) (Plan, error) {
	p, ok := c.byName[name]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, name)
	}
	return p, nil
}

// All возвращает планы в порядке каталога
func (c *Catalog) All() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// ActivateRequest данные подтвержденного платежа
type ActivateRequest struct {
	ChatID    int64
	PlanName  string
	Reference string
	Username  string
}

// SweepResult итог одного прохода sweeper
type SweepResult struct {
	Expired  int
	Notified int
	Revoked  int
	Deleted  int
	// продлены между выборкой и удалением, запись сохранена
	Renewed int
}
