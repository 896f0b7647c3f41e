package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
)

type OrderHandler struct {
	sessions SessionProvider
}

func NewOrderHandler(sessions SessionProvider) *OrderHandler {
	return &OrderHandler{sessions: sessions}
}

// CreateOrder godoc
//
//	@Summary	Place an order from the current cart
//	@Param		form	body		models.CheckoutForm		true	"Contact, shipping and payment details"
//	@Success	201		{object}	models.OrderResult		"Order confirmed"
//	@Failure	400		{object}	response.ErrorResponse	"Invalid form fields or empty cart"
//	@Failure	409		{object}	response.ErrorResponse	"An order is already being processed"
//	@Failure	502		{object}	response.ErrorResponse	"Processing failed; retryable"
//	@Router		/orders [post]
func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		var form models.CheckoutForm
		if err := utils.DecodeJSONBody(r, &form); err != nil {
			logger.Warn("Invalid create order input", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError(err.Error()))
			return
		}

		result, err := session.Orders.Submit(r.Context(), form)
		if err != nil {
			logger.Warn("Order not placed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Order created successfully", slog.String("orderId", result.Order.ID))
		response.Success(w, http.StatusCreated, result)
	}
}

func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		orders, err := session.Orders.History(r.Context())
		if err != nil {
			logger.Error("Failed to list orders", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.OrderHistoryResponse{Orders: orders, Total: len(orders)})
	}
}
