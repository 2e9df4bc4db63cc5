// Package validator wires go-playground/validator behind Echo's Validator
// interface and renders failures as the API's per-field 422 message map.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"gate/internal/domain/entity"
	domainerrors "gate/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// RequestValidator adapts the validator library to echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

// New constructs the validator with the custom phone rules registered.
func New() *RequestValidator {
	validate := validator.New()

	// Error messages name fields by their json tag, not the Go field name.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	// phonecc: the number must carry the "62" country code.
	_ = validate.RegisterValidation("phonecc", func(fl validator.FieldLevel) bool {
		return entity.HasCountryCode(fl.Field().String())
	})

	// carrier: the prefix must belong to an allow-listed carrier. A missing
	// country code is the phonecc rule's finding, not this one's.
	_ = validate.RegisterValidation("carrier", func(fl validator.FieldLevel) bool {
		phone := fl.Field().String()
		if !entity.HasCountryCode(phone) {
			return true
		}
		if !entity.ValidPhoneShape(phone) {
			return false
		}
		_, ok := entity.ClassifyCarrier(phone)

		return ok
	})

	return &RequestValidator{validate: validate}
}

// Validate implements echo.Validator. A failing struct yields a
// ValidationError carrying every violated rule, field by field.
func (v *RequestValidator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return errors.Wrap(err, "failed to validate request")
	}

	validationErr := domainerrors.NewValidationError()
	for _, fieldErr := range fieldErrors {
		validationErr.Add(fieldErr.Field(), messageFor(fieldErr))
	}

	return validationErr
}

// messageFor renders one violated rule as a user-facing sentence.
func messageFor(fieldErr validator.FieldError) string {
	field := fieldErr.Field()

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("The %s must not be greater than %s characters.", field, fieldErr.Param())
	case "phonecc":
		return "Phone number must start with 62."
	case "carrier":
		return "Phone number must use XL/Axis or IM3 carrier."
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
