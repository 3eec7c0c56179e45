package action

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

// FieldError is the first validation failure found on an input.
type FieldError struct {
	Field   string
	Message string
}

// Validator checks `validate` struct tags. A `msg` tag on a field overrides
// the generated message for every rule on that field.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("bcryptlen", validateBcryptLen)
	_ = v.RegisterValidation("int64id", validateInt64ID)
	return &Validator{validate: v}
}

// validateBcryptLen bounds a string by bytes, the unit bcrypt truncates on.
func validateBcryptLen(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= domain.MaxPasswordBytes
}

// validateInt64ID accepts base-10 integers that fit in an int64.
func validateInt64ID(fl validator.FieldLevel) bool {
	_, err := strconv.ParseInt(fl.Field().String(), 10, 64)
	return err == nil
}

// Check returns nil when in is valid.
func (v *Validator) Check(in any) *FieldError {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &FieldError{Message: "Invalid input"}
	}
	first := errs[0]
	if custom := messageTag(in, first.StructField()); custom != "" {
		return &FieldError{Field: first.Field(), Message: custom}
	}
	return &FieldError{Field: first.Field(), Message: defaultMessage(first)}
}

func messageTag(in any, structField string) string {
	t := reflect.TypeOf(in)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return ""
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return ""
	}
	return f.Tag.Get("msg")
}

func defaultMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "numeric":
		return fmt.Sprintf("%s must be a number", field)
	case "int64id":
		return fmt.Sprintf("%s must be a whole number", field)
	case "bcryptlen":
		return fmt.Sprintf("%s must be at most %d bytes", field, domain.MaxPasswordBytes)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
