package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	service "github.com/aaravmahajanofficial/vmjewels-storefront/internal/services"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
)

// SessionProvider opens the storefront session for a visitor id and holds it until release is called.
type SessionProvider interface {
	Acquire(ctx context.Context, id string) (*service.Session, func(), error)
}

// currentSession writes the error response itself when no session can be opened.
// The session is held until the request context ends.
func currentSession(w http.ResponseWriter, r *http.Request, sessions SessionProvider) (*service.Session, *slog.Logger, bool) {

	logger := middleware.LoggerFromContext(r.Context())

	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		logger.Error("Request reached a session route without a session")
		response.Error(w, errors.InternalError("Session unavailable"))
		return nil, logger, false
	}

	session, release, err := sessions.Acquire(r.Context(), id)
	if err != nil {
		logger.Error("Failed to open session", slog.String("error", err.Error()))
		response.Error(w, err)
		return nil, logger, false
	}

	context.AfterFunc(r.Context(), release)

	return session, logger, true
}
