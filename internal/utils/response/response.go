package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/go-playground/validator/v10"
)

// RetryAfterSeconds is advertised on retryable failures such as a declined order submission.
const RetryAfterSeconds = "1"

type APIResponse struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   []string          `json:"details,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body APIResponse) {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", slog.Int("status", statusCode), slog.String("error", err.Error()))
	}
}

func Success(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, APIResponse{Success: true, Data: data})
}

// Error renders err as the error envelope. Errors that are not AppErrors never leak their text.
func Error(w http.ResponseWriter, err error) {

	appErr, ok := errors.IsAppError(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, APIResponse{Error: &ErrorResponse{
			Code:    errors.ErrCodeInternal,
			Message: "An unexpected error occurred",
		}})
		return
	}

	body := &ErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Fields:    appErr.Fields,
		Retryable: appErr.Retryable,
	}

	if appErr.Detail != "" {
		body.Details = []string{appErr.Detail}
	}

	if appErr.Retryable {
		w.Header().Set("Retry-After", RetryAfterSeconds)
	}

	writeJSON(w, appErr.StatusCode, APIResponse{Error: body})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field %s is required", fe.Field())
	case "min":
		return fmt.Sprintf("Field %s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field %s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("Field %s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("Field %s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Field %s is invalid: %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}

// ValidationError sends the list of struct validation failures, also keyed by field.
func ValidationError(w http.ResponseWriter, errs validator.ValidationErrors) {

	body := &ErrorResponse{
		Code:    errors.ErrCodeValidation,
		Message: "Validation failed",
		Fields:  make(map[string]string, len(errs)),
	}

	for _, fe := range errs {
		msg := describe(fe)
		body.Details = append(body.Details, msg)

		if _, seen := body.Fields[fe.Field()]; !seen {
			body.Fields[fe.Field()] = msg
		}
	}

	writeJSON(w, http.StatusBadRequest, APIResponse{Error: body})
}
