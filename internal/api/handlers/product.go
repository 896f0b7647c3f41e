package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ProductHandler struct {
	productService *service.ProductService
	sessions       SessionProvider
	validator      *validator.Validate
}

func NewProductHandler(productService *service.ProductService, sessions SessionProvider) *ProductHandler {
	return &ProductHandler{productService: productService, sessions: sessions, validator: validator.New()}
}

// queryList accepts both repeated parameters and comma separated values.
func queryList(r *http.Request, name string) []string {

	var out []string

	for _, raw := range r.URL.Query()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}

	return out
}

// ListProducts godoc
//
//	@Summary	List catalog products
//	@Param		category	query	string	false	"rings, necklaces, earrings, bracelets (repeatable)"
//	@Param		price		query	string	false	"0-100, 100-500, 500-1000, 1000+ (repeatable)"
//	@Param		sort		query	string	false	"featured, price-low, price-high, name, newest"
//	@Router		/products [get]
func (h *ProductHandler) ListProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		filter := models.ProductFilter{Sort: models.SortOrder(r.URL.Query().Get("sort"))}

		for _, c := range queryList(r, "category") {
			filter.Categories = append(filter.Categories, models.Category(c))
		}

		for _, p := range queryList(r, "price") {
			filter.PriceRanges = append(filter.PriceRanges, models.PriceRange(p))
		}

		if err := utils.ValidateStruct(h.validator, filter); err != nil {
			logger.Warn("Invalid product filter", slog.String("error", err.Error()))
			if verrs, ok := asValidationErrors(err); ok {
				response.ValidationError(w, verrs)
				return
			}
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, h.productService.ListProducts(filter))
	}
}

// GetProduct also records the product in the visitor's recently viewed list.
func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		product, err := h.productService.GetProduct(id)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Info("Product not found", slog.Int64("productId", id))
			response.Error(w, err)
			return
		}

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		if err := session.RecentlyViewed.Record(r.Context(), *product); err != nil {
			logger.Warn("Failed to record product view", slog.String("error", err.Error()))
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) RecentlyViewed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, _, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		products := session.RecentlyViewed.List(r.Context())

		response.Success(w, http.StatusOK, models.ProductListResponse{Products: products, Total: len(products)})
	}
}
