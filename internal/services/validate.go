package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkInput rejects malformed payloads before any network or store call.
func checkInput(input any) error {
	if err := validate.Struct(input); err != nil {
		return apierr.ValidationFailed(fmt.Errorf("invalid input: %w", err))
	}
	return nil
}
