package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CheckoutHandler struct {
	sessions  SessionProvider
	validator *validator.Validate
}

func NewCheckoutHandler(sessions SessionProvider) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, validator: validator.New()}
}

// BeginCheckout snapshots the cart and promo for the checkout page.
func (h *CheckoutHandler) BeginCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		summary, err := session.Checkout.BeginCheckout(r.Context())
		if err != nil {
			logger.Warn("Checkout not started", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, summary)
	}
}

// ValidateField checks one field as the visitor leaves it.
func (h *CheckoutHandler) ValidateField() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.ValidateFieldRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid field validation input")
			return
		}

		if !service.KnownField(req.Field) {
			response.Error(w, errors.BadRequestError("Unknown checkout field").WithDetail(req.Field))
			return
		}

		response.Success(w, http.StatusOK, session.Validator.ValidateField(r.Context(), req.Field, req.Value))
	}
}

// ValidateForm reports every field at once; an invalid form is still a 200 with valid=false.
func (h *CheckoutHandler) ValidateForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		var form models.CheckoutForm
		if err := utils.DecodeJSONBody(r, &form); err != nil {
			logger.Warn("Invalid checkout form input", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError(err.Error()))
			return
		}

		response.Success(w, http.StatusOK, session.Validator.ValidateForm(r.Context(), form))
	}
}
