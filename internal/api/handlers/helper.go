package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

func asValidationErrors(err error) (validator.ValidationErrors, bool) {
	var verrs validator.ValidationErrors
	ok := errors.As(err, &verrs)

	return verrs, ok
}
