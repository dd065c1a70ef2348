package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

var validate = validator.New()

// validateStruct runs the struct tags and converts failures into the
// INVALID_ARGUMENT shape with a per-field detail map.
func validateStruct(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}

	details := make(map[string]any, len(validationErrs))
	for _, fieldErr := range validationErrs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return apperrors.NewInvalidArgument("validation failed", details)
}
