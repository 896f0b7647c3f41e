package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/api/middleware"
	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps checkout and cart payloads.
const MaxBodyBytes = 1 << 20

var (
	ErrEmptyBody    = errors.New("request body cannot be empty")
	ErrBodyTooLarge = errors.New("request body too large")
)

// DecodeJSONBody reads one JSON document from the request body into dest.
func DecodeJSONBody(r *http.Request, dest any) error {

	defer r.Body.Close()

	logger := middleware.LoggerFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Request body over limit", slog.Int64("limit", tooLarge.Limit))
			return ErrBodyTooLarge
		}

		logger.Error("Failed to read request body", slog.String("error", err.Error()))
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		logger.Warn("Empty request body")
		return ErrEmptyBody
	}

	if err := json.Unmarshal(body, dest); err != nil {
		logger.Warn("Failed to parse request JSON", slog.String("error", err.Error()))
		return fmt.Errorf("invalid JSON format: %w", err)
	}

	return nil
}

// ValidateStruct runs the validator tags on data. Tag failures come back as validator.ValidationErrors.
func ValidateStruct(validate *validator.Validate, data any) error {

	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		slog.Debug("User input validation failed", slog.Int("violations", len(validationErrs)))
		return fmt.Errorf("validation error: %w", validationErrs)
	}

	slog.Error("Unexpected validation error", slog.String("error", err.Error()))
	return fmt.Errorf("unexpected validation error: %w", err)
}
