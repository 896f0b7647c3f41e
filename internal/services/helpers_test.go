package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/catalog"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/config"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const sessionID = "3f1c2a9e-6a55-4c1e-9d7b-0c6a1f0e2b11"

var (
	errStoreDown = errors.New("store unavailable")
	fixedNow     = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
)

func clock() time.Time { return fixedNow }

// flakyStore wraps the in-memory store and fails on demand.
type flakyStore struct {
	*memory.Store
	failGet atomic.Bool
	failSet atomic.Bool
	failDel atomic.Bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: memory.New()}
}

func (f *flakyStore) Get(ctx context.Context, key string, value any) (bool, error) {
	if f.failGet.Load() {
		return false, errStoreDown
	}

	return f.Store.Get(ctx, key, value)
}

func (f *flakyStore) Set(ctx context.Context, key string, value any) error {
	if f.failSet.Load() {
		return errStoreDown
	}

	return f.Store.Set(ctx, key, value)
}

func (f *flakyStore) Delete(ctx context.Context, key string) error {
	if f.failDel.Load() {
		return errStoreDown
	}

	return f.Store.Delete(ctx, key)
}

// recorder captures every bus event.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func record(bus *events.Bus) *recorder {
	r := &recorder{}
	bus.SubscribeAll(func(_ context.Context, e events.Event) {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	})

	return r
}

func (r *recorder) ofType(t events.Type) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}

	return out
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) OrderConfirmed(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type fixture struct {
	store     *flakyStore
	catalog   *catalog.Catalog
	bus       *events.Bus
	events    *recorder
	pricing   *service.PricingEngine
	rules     *service.FieldRules
	cart      *service.CartStore
	checkout  *service.CheckoutService
	validator *service.CheckoutValidator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:   newFlakyStore(),
		catalog: catalog.Default(),
		bus:     events.NewBus(),
		pricing: service.NewPricingEngine(config.DefaultPricingRules(), nil),
		rules:   service.NewFieldRules(clock),
	}
	f.events = record(f.bus)
	f.cart = service.NewCartStore(sessionID, f.store, f.catalog, f.bus)
	f.checkout = service.NewCheckoutService(sessionID, f.cart, f.pricing, f.store, f.bus)
	f.validator = service.NewCheckoutValidator(sessionID, f.rules, f.bus)

	return f
}

func (f *fixture) submitter(opts ...service.SubmitterOption) *service.OrderSubmitter {
	opts = append([]service.SubmitterOption{service.WithDelay(0), service.WithClock(clock)}, opts...)

	return service.NewOrderSubmitter(sessionID, f.cart, f.checkout, f.validator, f.store, f.bus, opts...)
}

func validCardForm() models.CheckoutForm {
	return models.CheckoutForm{
		Email:         "jane@example.com",
		FirstName:     "Jane",
		LastName:      "Doe",
		Phone:         "555-0100",
		Address:       "1 Main St",
		City:          "New York",
		State:         "NY",
		Zip:           "10001",
		PaymentMethod: "card",
		CardName:      "Jane Doe",
		CardNumber:    "4111 1111 1111 1111",
		Expiry:        "12/30",
		CVV:           "123",
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got.String())
}

func lineItem(id int64, price string, qty int) models.CartLineItem {
	return models.CartLineItem{ProductID: id, Name: "Item", UnitPrice: money(price), Quantity: qty}
}
