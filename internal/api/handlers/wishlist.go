package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/models"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
)

type WishlistHandler struct {
	sessions SessionProvider
}

func NewWishlistHandler(sessions SessionProvider) *WishlistHandler {
	return &WishlistHandler{sessions: sessions}
}

func (h *WishlistHandler) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		items, err := session.Wishlist.Items(r.Context())
		if err != nil {
			logger.Error("Failed to load wishlist", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.WishlistResponse{Items: items, Total: len(items)})
	}
}

func (h *WishlistHandler) Add() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		items, added, err := session.Wishlist.Add(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to add to wishlist", slog.Int64("productId", id), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		status := http.StatusOK
		if added {
			status = http.StatusCreated
		}

		response.Success(w, status, models.WishlistResponse{Items: items, Total: len(items), Added: added})
	}
}

func (h *WishlistHandler) Remove() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		session, logger, ok := currentSession(w, r, h.sessions)
		if !ok {
			return
		}

		items, err := session.Wishlist.Remove(r.Context(), id)
		if err != nil {
			logger.Error("Failed to remove from wishlist", slog.Int64("productId", id), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.WishlistResponse{Items: items, Total: len(items)})
	}
}
