package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
)

type Type string

const (
	CartChanged      Type = "cart.changed"
	TotalsChanged    Type = "totals.changed"
	ValidationResult Type = "validation.result"
	OrderResult      Type = "order.result"
)

type Event struct {
	Type      Type
	SessionID string
	Payload   any
	At        time.Time
}

type CartChangedPayload struct {
	Cart    models.Cart
	Version uint64
}

type TotalsChangedPayload struct {
	Totals models.OrderTotals
	Promo  *models.PromoCode
}

type ValidationResultPayload struct {
	Results []models.FieldResult
}

type OrderResultPayload struct {
	Result models.OrderResult
}

type Handler func(ctx context.Context, e Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously, in subscription order, on the publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	byType map[Type][]subscription
	all    []subscription
}

func NewBus() *Bus {
	return &Bus{byType: make(map[Type][]subscription)}
}

// Subscribe registers h for one event type and returns a function that removes it.
func (b *Bus) Subscribe(t Type, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.byType[t] = append(b.byType[t], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.byType[t] = remove(b.byType[t], id)
	}
}

// SubscribeAll registers h for every event type.
func (b *Bus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = remove(b.all, id)
	}
}

// Publish never fails; a panicking handler is logged and skipped.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}

	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.byType[e.Type])+len(b.all))
	for _, s := range b.byType[e.Type] {
		handlers = append(handlers, s.handler)
	}
	for _, s := range b.all {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		deliver(ctx, h, e)
	}
}

func deliver(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			middleware.LoggerFromContext(ctx).Error("Event handler panicked",
				slog.String("event", string(e.Type)),
				slog.Any("panic", r),
			)
		}
	}()

	h(ctx, e)
}

func remove(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}

	return out
}
