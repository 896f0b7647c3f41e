package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
)

type WishlistService struct {
	mu        sync.Mutex
	sessionID string
	store     storage.Storage
	catalog   ProductLookup
	now       func() time.Time
}

func NewWishlistService(sessionID string, store storage.Storage, catalog ProductLookup) *WishlistService {
	return &WishlistService{sessionID: sessionID, store: store, catalog: catalog, now: time.Now}
}

func (w *WishlistService) key() string {
	return storage.Key(storage.WishlistKeyPrefix, w.sessionID)
}

func (w *WishlistService) Items(ctx context.Context) ([]models.WishlistItem, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.load(ctx)
}

// Add is idempotent; added reports whether the product was new to the list.
func (w *WishlistService) Add(ctx context.Context, productID int64) ([]models.WishlistItem, bool, error) {

	product, ok := w.catalog.Get(productID)
	if !ok {
		return nil, false, errors.NotFoundError("Product not found")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	items, err := w.load(ctx)
	if err != nil {
		return nil, false, err
	}

	if slices.ContainsFunc(items, func(i models.WishlistItem) bool { return i.ProductID == productID }) {
		return items, false, nil
	}

	items = append(items, models.WishlistItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		AddedAt:   w.now().UTC(),
	})

	if err := w.save(ctx, items); err != nil {
		return nil, false, err
	}

	return items, true, nil
}

func (w *WishlistService) Remove(ctx context.Context, productID int64) ([]models.WishlistItem, error) {

	w.mu.Lock()
	defer w.mu.Unlock()

	items, err := w.load(ctx)
	if err != nil {
		return nil, err
	}

	next := slices.DeleteFunc(slices.Clone(items), func(i models.WishlistItem) bool { return i.ProductID == productID })
	if len(next) == len(items) {
		return items, nil
	}

	if err := w.save(ctx, next); err != nil {
		return nil, err
	}

	return next, nil
}

// Toggle adds a missing product or removes a present one.
func (w *WishlistService) Toggle(ctx context.Context, productID int64) ([]models.WishlistItem, bool, error) {

	items, err := w.Items(ctx)
	if err != nil {
		return nil, false, err
	}

	if slices.ContainsFunc(items, func(i models.WishlistItem) bool { return i.ProductID == productID }) {
		items, err := w.Remove(ctx, productID)
		return items, false, err
	}

	return w.Add(ctx, productID)
}

func (w *WishlistService) load(ctx context.Context) ([]models.WishlistItem, error) {

	var items []models.WishlistItem

	if _, err := w.store.Get(ctx, w.key(), &items); err != nil {
		if !storage.IsCorrupt(err) {
			return nil, errors.StorageError("Failed to load wishlist").WithError(err)
		}

		middleware.LoggerFromContext(ctx).Warn("Discarding unreadable wishlist", slog.String("sessionId", w.sessionID))
		items = nil
	}

	if items == nil {
		items = []models.WishlistItem{}
	}

	return items, nil
}

func (w *WishlistService) save(ctx context.Context, items []models.WishlistItem) error {
	if err := w.store.Set(ctx, w.key(), items); err != nil {
		return errors.StorageError("Failed to save wishlist").WithError(err)
	}

	return nil
}
