package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	appErrors "github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("Success - Wraps Underlying Error", func(t *testing.T) {
		cause := errors.New("redis down")

		err := appErrors.StorageError("Failed to save cart").WithError(cause)

		assert.Equal(t, "Failed to save cart", err.Error())
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	})

	t.Run("Success - IsAppError Through Wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("checkout: %w", appErrors.EmptyCartError("Your cart is empty"))

		appErr, ok := appErrors.IsAppError(wrapped)

		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeEmptyCart, appErr.Code)
		assert.True(t, appErrors.HasCode(wrapped, appErrors.ErrCodeEmptyCart))
		assert.False(t, appErrors.HasCode(wrapped, appErrors.ErrCodeNotFound))
	})

	t.Run("Success - Submission Errors Are Retryable", func(t *testing.T) {
		err := appErrors.SubmissionError("Payment processing failed")

		assert.True(t, err.Retryable)
		assert.Equal(t, appErrors.ErrCodeSubmissionFailed, err.Code)
		assert.False(t, appErrors.ValidationError("bad").Retryable)
	})

	t.Run("Success - Field Reasons", func(t *testing.T) {
		err := appErrors.AddValidationError("zip", "Please enter a valid ZIP code").
			WithField("cvv", "Please enter a valid CVV")

		assert.Equal(t, appErrors.ErrCodeValidation, err.Code)
		assert.Len(t, err.Fields, 2)
		assert.Equal(t, "Please enter a valid CVV", err.Fields["cvv"])
	})

	t.Run("Failure - Plain Error", func(t *testing.T) {
		_, ok := appErrors.IsAppError(errors.New("plain"))

		assert.False(t, ok)
	})
}
