package handlers

import (
	"net/http"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
)

type NewsletterHandler struct {
	newsletter *service.NewsletterService
}

func NewNewsletterHandler(newsletter *service.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter}
}

func (h *NewsletterHandler) Subscribe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.SubscribeRequest
		if err := utils.DecodeJSONBody(r, &req); err != nil {
			logger.Warn("Invalid subscribe input")
			response.Error(w, errors.BadRequestError(err.Error()))
			return
		}

		resp, err := h.newsletter.Subscribe(r.Context(), req.Email)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, resp)
	}
}
