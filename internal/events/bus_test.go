package events_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	ctx := t.Context()

	t.Run("Success - Typed Subscriber Only Sees Its Type", func(t *testing.T) {
		bus := events.NewBus()

		var got []events.Event
		bus.Subscribe(events.CartChanged, func(_ context.Context, e events.Event) {
			got = append(got, e)
		})

		bus.Publish(ctx, events.Event{Type: events.TotalsChanged, SessionID: "s1"})
		bus.Publish(ctx, events.Event{Type: events.CartChanged, SessionID: "s1"})

		require.Len(t, got, 1)
		assert.Equal(t, events.CartChanged, got[0].Type)
		assert.Equal(t, "s1", got[0].SessionID)
		assert.False(t, got[0].At.IsZero(), "Publish should stamp the event time")
	})

	t.Run("Success - Delivery Order", func(t *testing.T) {
		bus := events.NewBus()

		var order []string
		bus.Subscribe(events.OrderResult, func(context.Context, events.Event) { order = append(order, "first") })
		bus.SubscribeAll(func(context.Context, events.Event) { order = append(order, "all") })
		bus.Subscribe(events.OrderResult, func(context.Context, events.Event) { order = append(order, "second") })

		bus.Publish(ctx, events.Event{Type: events.OrderResult})

		assert.Equal(t, []string{"first", "second", "all"}, order)
	})

	t.Run("Success - Unsubscribe", func(t *testing.T) {
		bus := events.NewBus()

		calls := 0
		unsubscribe := bus.Subscribe(events.ValidationResult, func(context.Context, events.Event) { calls++ })
		unsubscribeAll := bus.SubscribeAll(func(context.Context, events.Event) { calls++ })

		bus.Publish(ctx, events.Event{Type: events.ValidationResult})
		unsubscribe()
		unsubscribeAll()
		bus.Publish(ctx, events.Event{Type: events.ValidationResult})

		assert.Equal(t, 2, calls)
	})

	t.Run("Success - Panicking Handler Does Not Stop Delivery", func(t *testing.T) {
		bus := events.NewBus()

		delivered := false
		bus.Subscribe(events.CartChanged, func(context.Context, events.Event) { panic("boom") })
		bus.Subscribe(events.CartChanged, func(context.Context, events.Event) { delivered = true })

		assert.NotPanics(t, func() {
			bus.Publish(ctx, events.Event{Type: events.CartChanged})
		})
		assert.True(t, delivered)
	})

	t.Run("Success - Nil Bus Is A No-op", func(t *testing.T) {
		var bus *events.Bus

		assert.NotPanics(t, func() {
			bus.Publish(ctx, events.Event{Type: events.CartChanged})
		})
	})

	t.Run("Success - Concurrent Publish", func(t *testing.T) {
		bus := events.NewBus()

		var mu sync.Mutex
		count := 0
		bus.SubscribeAll(func(context.Context, events.Event) {
			mu.Lock()
			count++
			mu.Unlock()
		})

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				bus.Publish(ctx, events.Event{Type: events.TotalsChanged})
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, count)
	})
}
