// Package validation runs struct-tag validation for request DTOs and turns
// failures into the API's validation error shape.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("period", validatePeriod)
}

// validatePeriod accepts "YYYY-MM" strings inside the supported range.
func validatePeriod(fl validator.FieldLevel) bool {
	_, err := period.Parse(fl.Field().String())
	return err == nil
}

// Struct validates s and returns an AppError listing every failed field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	details := internal.ValidationErrors{Errors: make([]internal.ValidationError, 0, len(verrs))}
	for _, fe := range verrs {
		details.Errors = append(details.Errors, internal.ValidationError{
			Field:   fieldPath(fe),
			Message: message(fe),
			Code:    string(codeFor(fe)),
		})
	}

	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(details)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s) or a value of at least %s", field, fe.Param(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "period":
		return fmt.Sprintf("%s must be a valid period formatted as YYYY-MM", field)
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}

func codeFor(fe validator.FieldError) internal.ErrorCode {
	switch fe.Tag() {
	case "period":
		return internal.ErrCodeInvalidPeriod
	case "gt":
		if strings.HasSuffix(fieldPath(fe), "]") || fe.Field() == "id" {
			return internal.ErrCodeInvalidID
		}
	}
	return internal.ErrCodeValidationFailed
}
