package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
)

type cachedTotals struct {
	version uint64
	promo   string
	totals  models.OrderTotals
}

// CheckoutService owns the session's active promo and the totals derived from the cart.
type CheckoutService struct {
	mu        sync.Mutex
	sessionID string
	cart      *CartStore
	pricing   *PricingEngine
	store     storage.Storage
	bus       *events.Bus
	promo     *models.PromoCode
	cache     *cachedTotals
}

func NewCheckoutService(sessionID string, cart *CartStore, pricing *PricingEngine, store storage.Storage, bus *events.Bus) *CheckoutService {

	c := &CheckoutService{
		sessionID: sessionID,
		cart:      cart,
		pricing:   pricing,
		store:     store,
		bus:       bus,
	}

	cart.OnChange(c.onCartChanged)

	return c
}

// Load restores a previously applied promo. Unknown or unreadable codes are dropped.
func (c *CheckoutService) Load(ctx context.Context) error {

	logger := middleware.LoggerFromContext(ctx)

	var stored models.PromoCode

	found, err := c.store.Get(ctx, storage.Key(storage.AppliedPromoKeyPrefix, c.sessionID), &stored)
	if err != nil {
		if !storage.IsCorrupt(err) {
			return errors.StorageError("Failed to load applied promo").WithError(err)
		}

		logger.Warn("Discarding unreadable promo", slog.String("sessionId", c.sessionID), slog.String("error", err.Error()))
		found = false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.promo = nil
	c.cache = nil

	if found {
		if promo, status := c.pricing.LookupPromo(stored.Code); status == models.PromoStatusApplied {
			c.promo = promo
		}
	}

	return nil
}

func (c *CheckoutService) Promo() *models.PromoCode {
	c.mu.Lock()
	defer c.mu.Unlock()

	return clonePromo(c.promo)
}

// ApplyPromo replaces the active promo. A blank code leaves it untouched; an unknown code clears it.
func (c *CheckoutService) ApplyPromo(ctx context.Context, code string) (models.PromoResult, error) {

	logger := middleware.LoggerFromContext(ctx)

	promo, status := c.pricing.LookupPromo(code)

	switch status {
	case models.PromoStatusEmpty:
		return models.PromoResult{
			Status:  status,
			Promo:   c.Promo(),
			Totals:  c.Totals().View(),
			Message: "Please enter a promo code",
		}, nil

	case models.PromoStatusInvalid:
		logger.Info("Rejected promo code", slog.String("code", models.NormalizePromoCode(code)))

		totals, err := c.setPromo(ctx, nil)
		if err != nil {
			return models.PromoResult{}, err
		}

		return models.PromoResult{
			Status:  status,
			Totals:  totals.View(),
			Message: "Invalid promo code",
		}, nil
	}

	totals, err := c.setPromo(ctx, promo)
	if err != nil {
		return models.PromoResult{}, err
	}

	logger.Info("Promo code applied", slog.String("code", promo.Code))

	return models.PromoResult{
		Status:  models.PromoStatusApplied,
		Promo:   clonePromo(promo),
		Totals:  totals.View(),
		Message: "Promo code applied successfully!",
	}, nil
}

func (c *CheckoutService) RemovePromo(ctx context.Context) (models.PromoResult, error) {

	totals, err := c.setPromo(ctx, nil)
	if err != nil {
		return models.PromoResult{}, err
	}

	return models.PromoResult{
		Status:  models.PromoStatusRemoved,
		Totals:  totals.View(),
		Message: "Promo code removed",
	}, nil
}

func (c *CheckoutService) setPromo(ctx context.Context, promo *models.PromoCode) (models.OrderTotals, error) {

	key := storage.Key(storage.AppliedPromoKeyPrefix, c.sessionID)

	c.mu.Lock()

	var err error
	if promo == nil {
		err = c.store.Delete(ctx, key)
	} else {
		err = c.store.Set(ctx, key, promo)
	}

	if err != nil {
		c.mu.Unlock()
		return models.OrderTotals{}, errors.StorageError("Failed to save promo code").WithError(err)
	}

	c.promo = clonePromo(promo)
	totals := c.totalsLocked()
	active := clonePromo(c.promo)

	c.mu.Unlock()

	c.publishTotals(ctx, totals, active)

	return totals, nil
}

// Totals is cached per cart version and promo code.
func (c *CheckoutService) Totals() models.OrderTotals {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totalsLocked()
}

func (c *CheckoutService) totalsLocked() models.OrderTotals {

	cart, version := c.cart.State()
	code := promoCode(c.promo)

	if c.cache != nil && c.cache.version == version && c.cache.promo == code {
		return c.cache.totals
	}

	totals := c.pricing.ComputeTotals(cart.Lines, c.promo)
	c.cache = &cachedTotals{version: version, promo: code, totals: totals}

	return totals
}

func (c *CheckoutService) onCartChanged(ctx context.Context, cart models.Cart, version uint64) {

	c.mu.Lock()

	totals := c.pricing.ComputeTotals(cart.Lines, c.promo)
	if c.cache == nil || version >= c.cache.version {
		c.cache = &cachedTotals{version: version, promo: promoCode(c.promo), totals: totals}
	}
	active := clonePromo(c.promo)

	c.mu.Unlock()

	c.publishTotals(ctx, totals, active)
}

func (c *CheckoutService) publishTotals(ctx context.Context, totals models.OrderTotals, promo *models.PromoCode) {
	c.bus.Publish(ctx, events.Event{
		Type:      events.TotalsChanged,
		SessionID: c.sessionID,
		Payload:   events.TotalsChangedPayload{Totals: totals, Promo: promo},
	})
}

// BeginCheckout snapshots the cart and promo for the checkout page.
func (c *CheckoutService) BeginCheckout(ctx context.Context) (models.CheckoutSummary, error) {

	logger := middleware.LoggerFromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	cart, _ := c.cart.State()
	if cart.IsEmpty() {
		return models.CheckoutSummary{}, errors.EmptyCartError("Your cart is empty. Please add items before proceeding to checkout.")
	}

	if err := c.store.Set(ctx, storage.Key(storage.CheckoutCartKeyPrefix, c.sessionID), cart.Lines); err != nil {
		logger.Error("Failed to save checkout snapshot", slog.String("error", err.Error()))
		return models.CheckoutSummary{}, errors.StorageError("Failed to start checkout").WithError(err)
	}

	if c.promo != nil {
		if err := c.store.Set(ctx, storage.Key(storage.AppliedPromoKeyPrefix, c.sessionID), c.promo); err != nil {
			logger.Error("Failed to save applied promo", slog.String("error", err.Error()))
			return models.CheckoutSummary{}, errors.StorageError("Failed to start checkout").WithError(err)
		}
	}

	return models.CheckoutSummary{
		Lines:  cart.Lines,
		Promo:  clonePromo(c.promo),
		Totals: c.pricing.ComputeTotals(cart.Lines, c.promo).View(),
	}, nil
}

// Reset drops the promo and checkout snapshot once an order has gone through.
// Subscribers are told about the promo-free totals when a promo was active.
func (c *CheckoutService) Reset(ctx context.Context) error {

	c.mu.Lock()

	hadPromo := c.promo != nil
	c.promo = nil
	c.cache = nil

	var err error
	for _, key := range []string{
		storage.Key(storage.CheckoutCartKeyPrefix, c.sessionID),
		storage.Key(storage.AppliedPromoKeyPrefix, c.sessionID),
	} {
		if delErr := c.store.Delete(ctx, key); delErr != nil {
			err = errors.StorageError("Failed to clear checkout data").WithError(delErr)
			break
		}
	}

	totals := c.totalsLocked()

	c.mu.Unlock()

	if hadPromo {
		c.publishTotals(ctx, totals, nil)
	}

	return err
}

func promoCode(p *models.PromoCode) string {
	if p == nil {
		return ""
	}

	return p.Code
}

func clonePromo(p *models.PromoCode) *models.PromoCode {
	if p == nil {
		return nil
	}

	cp := *p

	return &cp
}
