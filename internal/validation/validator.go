// Package validation provides request validation using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/bookly/bookly-server/internal/errors"
)

// DateLayout is the wire format of calendar dates such as a book's published_date.
const DateLayout = "2006-01-02"

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports JSON field names and understands the "date" tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// "date" accepts YYYY-MM-DD calendar dates.
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error listing each bad field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "eqfield":
		return "must match " + e.Param()
	case "date":
		return "must be a date formatted as YYYY-MM-DD"
	default:
		return "is invalid"
	}
}
