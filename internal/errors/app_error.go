package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Retryable  bool
	Fields     map[string]string
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

// WithField records a per-field reason, used to flag every offending form field at once.
func (e *AppError) WithField(field, reason string) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}

	e.Fields[field] = reason

	return e
}

const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeInternal             = "INTERNAL_ERROR"
	ErrCodeStorage              = "STORAGE_ERROR"
	ErrCodeThirdPartyError      = "THIRD_PARTY_ERROR"
	ErrCodeCapacity             = "CAPACITY_EXCEEDED"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeInvalidPromo         = "INVALID_PROMO"
	ErrCodeSubmissionFailed     = "SUBMISSION_FAILED"
	ErrCodeSubmissionInProgress = "SUBMISSION_IN_PROGRESS"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func StorageError(message string) *AppError {
	return NewAppError(ErrCodeStorage, message, http.StatusInternalServerError)
}

func ThirdPartyError(message string) *AppError {
	return NewAppError(ErrCodeThirdPartyError, message, http.StatusBadGateway)
}

// CapacityError accompanies a clamped, still successful, quantity change.
func CapacityError(message string) *AppError {
	return NewAppError(ErrCodeCapacity, message, http.StatusOK)
}

func EmptyCartError(message string) *AppError {
	return NewAppError(ErrCodeEmptyCart, message, http.StatusBadRequest)
}

func InvalidPromoError(message string) *AppError {
	return NewAppError(ErrCodeInvalidPromo, message, http.StatusBadRequest)
}

func SubmissionError(message string) *AppError {
	e := NewAppError(ErrCodeSubmissionFailed, message, http.StatusBadGateway)
	e.Retryable = true

	return e
}

func SubmissionInProgressError(message string) *AppError {
	return NewAppError(ErrCodeSubmissionInProgress, message, http.StatusConflict)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	appErr, ok := IsAppError(err)

	return ok && appErr.Code == code
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason)).WithField(field, reason)
}
