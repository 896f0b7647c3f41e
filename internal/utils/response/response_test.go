package response_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "github.com/aaravmahajanofficial/vmjewels-storefront/internal/errors"
	"github.com/aaravmahajanofficial/vmjewels-storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()

	var body response.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	return body
}

func TestSuccess(t *testing.T) {
	rr := httptest.NewRecorder()

	response.Success(rr, http.StatusCreated, map[string]string{"order_id": "VM1"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"order_id":"VM1"}}`, rr.Body.String())
}

func TestError(t *testing.T) {
	t.Run("Success - App Error With Fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		err := appErrors.ValidationError("Please fix the errors in the form before submitting.").
			WithField("email", "Please enter a valid email address")

		response.Error(rr, fmt.Errorf("submit: %w", err))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode(t, rr)
		assert.False(t, body.Success)
		require.NotNil(t, body.Error)
		assert.Equal(t, appErrors.ErrCodeValidation, body.Error.Code)
		assert.Equal(t, "Please enter a valid email address", body.Error.Fields["email"])
		assert.Empty(t, rr.Header().Get("Retry-After"))
	})

	t.Run("Success - Retryable Flag", func(t *testing.T) {
		rr := httptest.NewRecorder()

		response.Error(rr, appErrors.SubmissionError("There was an error processing your order. Please try again."))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Equal(t, response.RetryAfterSeconds, rr.Header().Get("Retry-After"))
		body := decode(t, rr)
		assert.True(t, body.Error.Retryable)
	})

	t.Run("Success - Unknown Error Is Internal", func(t *testing.T) {
		rr := httptest.NewRecorder()

		response.Error(rr, fmt.Errorf("boom"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, appErrors.ErrCodeInternal, body.Error.Code)
		assert.NotContains(t, rr.Body.String(), "boom")
	})
}

func TestValidationError(t *testing.T) {
	t.Run("Success - Oneof Lists Choices", func(t *testing.T) {
		type sortParam struct {
			Sort string `validate:"oneof=featured name"`
		}

		err := validator.New().Struct(sortParam{Sort: "random"})
		require.Error(t, err)

		rr := httptest.NewRecorder()
		response.ValidationError(rr, err.(validator.ValidationErrors))

		assert.Equal(t, "Field Sort must be one of: featured, name", decode(t, rr).Error.Fields["Sort"])
	})


	type payload struct {
		Code string `validate:"max=3"`
		Qty  int    `validate:"gt=0"`
	}

	err := validator.New().Struct(payload{Code: "TOOLONG"})
	require.Error(t, err)

	rr := httptest.NewRecorder()
	response.ValidationError(rr, err.(validator.ValidationErrors))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, []string{"Field Code must be at most 3", "Field Qty must be greater than 0"}, body.Error.Details)
	assert.Equal(t, map[string]string{
		"Code": "Field Code must be at most 3",
		"Qty":  "Field Qty must be greater than 0",
	}, body.Error.Fields)
}
