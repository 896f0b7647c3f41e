package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	appErrors "github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionTokenHeader = "X-Session-Token"

type sessionContextKey struct{}

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// SessionClaims identify an anonymous storefront visitor.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type SessionMiddleware struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSessionMiddleware(key []byte, ttl time.Duration) *SessionMiddleware {
	return &SessionMiddleware{key: key, ttl: ttl, now: time.Now}
}

// Issue signs a token for sessionID.
func (m *SessionMiddleware) Issue(sessionID string) (string, error) {

	now := m.now()

	claims := &SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

// Parse verifies a token and returns its claims.
func (m *SessionMiddleware) Parse(tokenString string) (*SessionClaims, error) {

	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.SessionID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// Attach resolves the visitor's session from the bearer token. Visitors without a usable
// token get a fresh session, returned in the X-Session-Token header.
func (m *SessionMiddleware) Attach(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		var sessionID string

		// Token is of format : "Bearer <token>"
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			tokenParts := strings.Split(authHeader, " ")

			if len(tokenParts) == 2 && tokenParts[0] == "Bearer" {
				claims, err := m.Parse(tokenParts[1])
				if err != nil {
					logger.Warn("Discarding session token", slog.String("error", err.Error()))
				} else {
					sessionID = claims.SessionID
				}
			} else {
				logger.Warn("Invalid authorization header format")
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()

			token, err := m.Issue(sessionID)
			if err != nil {
				logger.Error("Failed to issue session token", slog.String("error", err.Error()))
				response.Error(w, appErrors.InternalError("Failed to start session").WithError(err))
				return
			}

			w.Header().Set(SessionTokenHeader, token)
			logger.Info("New session started", slog.String("sessionId", sessionID))
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, sessionID)
		ctx = WithLogger(ctx, logger.With(slog.String("sessionId", sessionID)))

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionContextKey{}).(string)
	return id, ok && id != ""
}

// WithSessionID is used by callers that resolve the session outside of Attach.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sessionID)
}
