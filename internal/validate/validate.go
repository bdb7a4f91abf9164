// Package validate checks struct tags with go-playground/validator and turns
// the first failure into an errs validation error.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"shareit/internal/errs"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var std = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}

// RegisterType validates fields of the given types as the value fn returns.
// Call it from package init only.
func RegisterType(fn validator.CustomTypeFunc, types ...any) {
	std.RegisterCustomTypeFunc(fn, types...)
}

// Struct validates v and reports the first failed rule.
func Struct(v any) error {
	err := std.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return errs.Validation("%s", message(fieldErrs[0]))
	}
	return errs.Validation("%s", err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return fe.Field() + " must not be blank"
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "invalid email: " + strings.TrimSpace(toString(fe.Value()))
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
