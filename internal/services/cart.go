package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/events"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
)

type ProductLookup interface {
	Get(id int64) (models.Product, bool)
}

// CartHook runs after a mutation has been persisted, outside the cart lock.
type CartHook func(ctx context.Context, cart models.Cart, version uint64)

type CartUpdate struct {
	Cart    models.Cart
	Changed bool
	// Warning is set when a quantity was clamped; the update itself still succeeded.
	Warning *errors.AppError
}

type CartStore struct {
	mu        sync.Mutex
	sessionID string
	store     storage.Storage
	catalog   ProductLookup
	bus       *events.Bus
	lines     []models.CartLineItem
	version   uint64
	hooks     []CartHook
}

func NewCartStore(sessionID string, store storage.Storage, catalog ProductLookup, bus *events.Bus) *CartStore {
	return &CartStore{
		sessionID: sessionID,
		store:     store,
		catalog:   catalog,
		bus:       bus,
	}
}

func (c *CartStore) key() string {
	return storage.Key(storage.CartKeyPrefix, c.sessionID)
}

func (c *CartStore) OnChange(hook CartHook) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks = append(c.hooks, hook)
}

// Load replaces the in-memory cart with the persisted one. Unreadable data yields an empty cart.
func (c *CartStore) Load(ctx context.Context) error {

	logger := middleware.LoggerFromContext(ctx)

	var stored []models.CartLineItem

	found, err := c.store.Get(ctx, c.key(), &stored)
	if err != nil {
		if !storage.IsCorrupt(err) {
			return errors.StorageError("Failed to load cart").WithError(err)
		}

		logger.Warn("Discarding unreadable cart", slog.String("sessionId", c.sessionID), slog.String("error", err.Error()))
		found, stored = false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if found {
		c.lines = normalizeLines(stored)
	} else {
		c.lines = nil
	}

	return nil
}

func (c *CartStore) Snapshot() models.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.Cart{Lines: cloneLines(c.lines)}
}

// State returns a snapshot together with the version it was taken at.
func (c *CartStore) State() (models.Cart, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.Cart{Lines: cloneLines(c.lines)}, c.version
}

func (c *CartStore) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.version
}

// Add merges into an existing line with the same product and variant, capping at MaxLineQuantity.
// Unknown products are ignored.
func (c *CartStore) Add(ctx context.Context, productID int64, variant models.Variant, quantity int) (CartUpdate, error) {

	product, ok := c.catalog.Get(productID)
	if !ok {
		middleware.LoggerFromContext(ctx).Warn("Ignoring add of unknown product", slog.Int64("productId", productID))
		return CartUpdate{Cart: c.Snapshot()}, nil
	}

	if quantity < models.MinLineQuantity {
		quantity = models.MinLineQuantity
	}

	key := models.LineKey{ProductID: productID, Metal: variant.Metal, Size: variant.Size}

	return c.mutate(ctx, func(lines []models.CartLineItem) ([]models.CartLineItem, *errors.AppError, bool) {

		if i := indexOf(lines, key); i >= 0 {
			next, warning := clampQuantity(addQuantity(lines[i].Quantity, quantity))
			if next == lines[i].Quantity {
				return lines, warning, false
			}

			lines[i].Quantity = next

			return lines, warning, true
		}

		next, warning := clampQuantity(quantity)
		lines = append(lines, models.CartLineItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Image:     product.Image,
			Variant:   variant,
			Quantity:  next,
		})

		return lines, warning, true
	})
}

// SetQuantity removes the line when quantity drops below one.
func (c *CartStore) SetQuantity(ctx context.Context, productID int64, variant models.Variant, quantity int) (CartUpdate, error) {
	key := models.LineKey{ProductID: productID, Metal: variant.Metal, Size: variant.Size}

	return c.mutate(ctx, func(lines []models.CartLineItem) ([]models.CartLineItem, *errors.AppError, bool) {
		return setLineQuantity(lines, key, func(int) int { return quantity })
	})
}

func (c *CartStore) Increase(ctx context.Context, productID int64, variant models.Variant) (CartUpdate, error) {
	key := models.LineKey{ProductID: productID, Metal: variant.Metal, Size: variant.Size}

	return c.mutate(ctx, func(lines []models.CartLineItem) ([]models.CartLineItem, *errors.AppError, bool) {
		return setLineQuantity(lines, key, func(q int) int { return q + 1 })
	})
}

// Decrease at quantity one removes the line.
func (c *CartStore) Decrease(ctx context.Context, productID int64, variant models.Variant) (CartUpdate, error) {
	key := models.LineKey{ProductID: productID, Metal: variant.Metal, Size: variant.Size}

	return c.mutate(ctx, func(lines []models.CartLineItem) ([]models.CartLineItem, *errors.AppError, bool) {
		return setLineQuantity(lines, key, func(q int) int { return q - 1 })
	})
}

func (c *CartStore) Remove(ctx context.Context, productID int64, variant models.Variant) (CartUpdate, error) {
	key := models.LineKey{ProductID: productID, Metal: variant.Metal, Size: variant.Size}

	return c.mutate(ctx, func(lines []models.CartLineItem) ([]models.CartLineItem, *errors.AppError, bool) {
		i := indexOf(lines, key)
		if i < 0 {
			return lines, nil, false
		}

		return slices.Delete(lines, i, i+1), nil, true
	})
}

func (c *CartStore) Clear(ctx context.Context) (CartUpdate, error) {
	return c.mutate(ctx, func(lines []models.CartLineItem) ([]models.CartLineItem, *errors.AppError, bool) {
		if len(lines) == 0 {
			return lines, nil, false
		}

		return nil, nil, true
	})
}

// mutate applies fn to a copy of the lines and commits it only once the store has accepted it.
func (c *CartStore) mutate(ctx context.Context, fn func([]models.CartLineItem) ([]models.CartLineItem, *errors.AppError, bool)) (CartUpdate, error) {

	logger := middleware.LoggerFromContext(ctx)

	c.mu.Lock()

	next, warning, changed := fn(cloneLines(c.lines))
	if !changed {
		cart := models.Cart{Lines: cloneLines(c.lines)}
		c.mu.Unlock()

		return CartUpdate{Cart: cart, Warning: warning}, nil
	}

	if next == nil {
		next = []models.CartLineItem{}
	}

	if err := c.store.Set(ctx, c.key(), next); err != nil {
		cart := models.Cart{Lines: cloneLines(c.lines)}
		c.mu.Unlock()

		logger.Error("Failed to persist cart", slog.String("sessionId", c.sessionID), slog.String("error", err.Error()))

		return CartUpdate{Cart: cart}, errors.StorageError("Failed to save cart").WithError(err)
	}

	c.lines = next
	c.version++
	version := c.version
	cart := models.Cart{Lines: cloneLines(next)}
	hooks := slices.Clone(c.hooks)

	c.mu.Unlock()

	c.bus.Publish(ctx, events.Event{
		Type:      events.CartChanged,
		SessionID: c.sessionID,
		Payload:   events.CartChangedPayload{Cart: cart, Version: version},
	})

	for _, hook := range hooks {
		hook(ctx, models.Cart{Lines: cloneLines(cart.Lines)}, version)
	}

	return CartUpdate{Cart: cart, Changed: true, Warning: warning}, nil
}

func setLineQuantity(lines []models.CartLineItem, key models.LineKey, next func(int) int) ([]models.CartLineItem, *errors.AppError, bool) {

	i := indexOf(lines, key)
	if i < 0 {
		return lines, nil, false
	}

	quantity := next(lines[i].Quantity)
	if quantity < models.MinLineQuantity {
		return slices.Delete(lines, i, i+1), nil, true
	}

	quantity, warning := clampQuantity(quantity)
	if quantity == lines[i].Quantity {
		return lines, warning, false
	}

	lines[i].Quantity = quantity

	return lines, warning, true
}

func clampQuantity(quantity int) (int, *errors.AppError) {
	if quantity > models.MaxLineQuantity {
		return models.MaxLineQuantity, errors.CapacityError("Maximum quantity per item is 10")
	}

	return max(quantity, models.MinLineQuantity), nil
}

// addQuantity saturates just above MaxLineQuantity so huge requests still clamp with a warning.
func addQuantity(current, extra int) int {
	if extra > models.MaxLineQuantity-current {
		return models.MaxLineQuantity + 1
	}

	return current + extra
}

func indexOf(lines []models.CartLineItem, key models.LineKey) int {
	return slices.IndexFunc(lines, func(l models.CartLineItem) bool { return l.Key() == key })
}

func cloneLines(lines []models.CartLineItem) []models.CartLineItem {
	if lines == nil {
		return []models.CartLineItem{}
	}

	return slices.Clone(lines)
}

// normalizeLines drops empty lines, clamps quantities and merges duplicate identities, keeping first-seen order.
func normalizeLines(stored []models.CartLineItem) []models.CartLineItem {

	out := make([]models.CartLineItem, 0, len(stored))

	for _, line := range stored {
		if line.Quantity < models.MinLineQuantity {
			continue
		}

		if i := indexOf(out, line.Key()); i >= 0 {
			out[i].Quantity, _ = clampQuantity(addQuantity(out[i].Quantity, line.Quantity))
			continue
		}

		line.Quantity, _ = clampQuantity(line.Quantity)
		out = append(out, line)
	}

	return out
}
