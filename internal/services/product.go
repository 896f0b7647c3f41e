package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/catalog"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/storage"
)

const MaxRecentlyViewed = 4

type ProductService struct {
	catalog *catalog.Catalog
}

func NewProductService(c *catalog.Catalog) *ProductService {
	return &ProductService{catalog: c}
}

func (s *ProductService) GetProduct(id int64) (*models.Product, error) {

	product, ok := s.catalog.Get(id)
	if !ok {
		return nil, errors.NotFoundError("Product not found")
	}

	return &product, nil
}

func (s *ProductService) ListProducts(filter models.ProductFilter) *models.ProductListResponse {

	products := s.catalog.List(filter)

	return &models.ProductListResponse{Products: products, Total: len(products)}
}

// RecentlyViewedService keeps the last few distinct products a session opened, newest first.
type RecentlyViewedService struct {
	mu        sync.Mutex
	sessionID string
	store     storage.Storage
	catalog   *catalog.Catalog
}

func NewRecentlyViewedService(sessionID string, store storage.Storage, c *catalog.Catalog) *RecentlyViewedService {
	return &RecentlyViewedService{sessionID: sessionID, store: store, catalog: c}
}

func (r *RecentlyViewedService) key() string {
	return storage.Key(storage.RecentlyViewedKeyPrefix, r.sessionID)
}

func (r *RecentlyViewedService) Record(ctx context.Context, product models.Product) error {

	r.mu.Lock()
	defer r.mu.Unlock()

	viewed := r.load(ctx)
	viewed = slices.DeleteFunc(viewed, func(p models.Product) bool { return p.ID == product.ID })
	viewed = append([]models.Product{product}, viewed...)

	if len(viewed) > MaxRecentlyViewed {
		viewed = viewed[:MaxRecentlyViewed]
	}

	if err := r.store.Set(ctx, r.key(), viewed); err != nil {
		return errors.StorageError("Failed to save recently viewed products").WithError(err)
	}

	return nil
}

// List falls back to the first featured products when nothing has been viewed yet.
func (r *RecentlyViewedService) List(ctx context.Context) []models.Product {

	r.mu.Lock()
	viewed := r.load(ctx)
	r.mu.Unlock()

	if len(viewed) > 0 {
		return viewed
	}

	featured := r.catalog.List(models.ProductFilter{Sort: models.SortFeatured})
	if len(featured) > MaxRecentlyViewed {
		featured = featured[:MaxRecentlyViewed]
	}

	return featured
}

// load treats any read failure as an empty history; this list is a convenience, not state.
func (r *RecentlyViewedService) load(ctx context.Context) []models.Product {

	var viewed []models.Product

	if _, err := r.store.Get(ctx, r.key(), &viewed); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to read recently viewed products",
			slog.String("sessionId", r.sessionID), slog.String("error", err.Error()))

		return nil
	}

	return viewed
}
