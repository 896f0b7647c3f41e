package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	sessions  SessionProvider
	validator *validator.Validate
}

func NewCartHandler(sessions SessionProvider) *CartHandler {
	return &CartHandler{sessions: sessions, validator: validator.New()}
}

func cartResponse(session *service.Session, cart models.Cart, warning *errors.AppError) models.CartResponse {

	resp := models.CartResponse{
		Lines:     cart.Lines,
		ItemCount: cart.ItemCount(),
		Totals:    session.Checkout.Totals().View(),
		Promo:     session.Checkout.Promo(),
	}

	if warning != nil {
		resp.Warning = warning.Message
	}

	return resp
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, _, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, cartResponse(session, session.Cart.Snapshot(), nil))
	}
}

// AddItem godoc
//
//	@Summary	Add a product to the cart
//	@Param		item	body		models.AddItemRequest	true	"Product, optional variant and quantity (default 1)"
//	@Success	200		{object}	models.CartResponse		"Updated cart; warning set when the quantity was capped"
//	@Router		/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add item input")
			return
		}

		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}

		update, err := session.Cart.Add(r.Context(), req.ProductID, models.Variant{Metal: req.Metal, Size: req.Size}, quantity)
		h.respond(w, logger, session, update, err)
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update quantity input")
			return
		}

		update, err := session.Cart.SetQuantity(r.Context(), req.ProductID, models.Variant{Metal: req.Metal, Size: req.Size}, req.Quantity)
		h.respond(w, logger, session, update, err)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return h.lineCommand("remove", func(ctx context.Context, s *service.Session, id int64, v models.Variant) (service.CartUpdate, error) {
		return s.Cart.Remove(ctx, id, v)
	})
}

func (h *CartHandler) IncreaseItem() http.HandlerFunc {
	return h.lineCommand("increase", func(ctx context.Context, s *service.Session, id int64, v models.Variant) (service.CartUpdate, error) {
		return s.Cart.Increase(ctx, id, v)
	})
}

func (h *CartHandler) DecreaseItem() http.HandlerFunc {
	return h.lineCommand("decrease", func(ctx context.Context, s *service.Session, id int64, v models.Variant) (service.CartUpdate, error) {
		return s.Cart.Decrease(ctx, id, v)
	})
}

type lineOp func(ctx context.Context, s *service.Session, productID int64, variant models.Variant) (service.CartUpdate, error)

func (h *CartHandler) lineCommand(name string, op lineOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.LineRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid cart line input", slog.String("op", name))
			return
		}

		update, err := op(r.Context(), session, req.ProductID, models.Variant{Metal: req.Metal, Size: req.Size})
		h.respond(w, logger, session, update, err)
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		update, err := session.Cart.Clear(r.Context())
		h.respond(w, logger, session, update, err)
	}
}

func (h *CartHandler) respond(w http.ResponseWriter, logger *slog.Logger, session *service.Session, update service.CartUpdate, err error) {

	if err != nil {
		logger.Error("Cart update failed", slog.String("error", err.Error()))
		response.Error(w, err)
		return
	}

	if update.Warning != nil {
		logger.Info("Cart quantity capped", slog.String("warning", update.Warning.Message))
	}

	response.Success(w, http.StatusOK, cartResponse(session, update.Cart, update.Warning))
}

func (h *CartHandler) Totals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, _, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, session.Checkout.Totals().View())
	}
}

// ApplyPromo answers an unknown code with INVALID_PROMO; the active promo has already been cleared by then.
func (h *CartHandler) ApplyPromo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.ApplyPromoRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid promo input")
			return
		}

		result, err := session.Checkout.ApplyPromo(r.Context(), req.Code)
		if err != nil {
			logger.Error("Failed to apply promo", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		switch result.Status {
		case models.PromoStatusEmpty:
			response.Error(w, errors.ValidationError(result.Message).WithField("code", result.Message))
			return
		case models.PromoStatusInvalid:
			response.Error(w, errors.InvalidPromoError(result.Message))
			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *CartHandler) RemovePromo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		result, err := session.Checkout.RemovePromo(r.Context())
		if err != nil {
			logger.Error("Failed to remove promo", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, result)
	}
}
