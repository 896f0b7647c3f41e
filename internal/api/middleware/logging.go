package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	appErrors "github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
	"github.com/google/uuid"
)

type loggerContextKey struct{}

const RequestIDHeader = "X-Request-ID"

// statusRecorder remembers the first status written so the completion line and the panic guard agree.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if !rec.wroteHeader {
		rec.status = code
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.wroteHeader {
		rec.status = http.StatusOK
		rec.wroteHeader = true
	}
	return rec.ResponseWriter.Write(b)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// completionLevel maps the response status to the level of the "Request completed" line.
func completionLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Logging tags every request with a correlation id, stores a request logger in the context and
// turns handler panics into a 500 envelope.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()

		correlationID := r.Header.Get(RequestIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, correlationID)

		requestLogger := slog.Default().With(
			slog.String("correlation_id", correlationID),
			slog.String("http_method", r.Method),
			slog.String("http_path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
		)

		requestLogger.Debug("Incoming request", slog.String("user_agent", r.UserAgent()))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}

				requestLogger.Error("Handler panicked",
					slog.String("panic", fmt.Sprint(p)),
					slog.String("stack", string(debug.Stack())))

				if !rec.wroteHeader {
					response.Error(rec, appErrors.InternalError("Something went wrong"))
				}
			}

			requestLogger.Log(r.Context(), completionLevel(rec.status), "Request completed",
				slog.Int("http_status", rec.status),
				slog.Duration("duration", time.Since(start)))
		}()

		next.ServeHTTP(rec, r.WithContext(WithLogger(r.Context(), requestLogger)))
	})
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// LoggerFromContext falls back to slog.Default outside a request.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok {
		return logger
	}

	return slog.Default()
}
