package services

import (
	"fmt"

	"food-rescue-api/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs the struct's validate tags and reports failures as
// apperr.ErrInvalidFormat.
func check(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrInvalidFormat, err)
	}
	return nil
}
