// Package validation checks request structs declared with validate tags and
// reports failures as field/message pairs keyed by the JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"safetravels-api/errs"
	"safetravels-api/utils"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	rules := map[string]func(string) bool{
		"username":       utils.IsValidUsername,
		"strongpassword": utils.IsStrongPassword,
		"phone":          utils.IsValidPhone,
	}
	for tag, fn := range rules {
		fn := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}

	return v
}

// Result is the list of failed rules; empty means the value is valid.
type Result []errs.FieldError

func (r Result) OK() bool {
	return len(r) == 0
}

// Err returns a Validation error carrying the failures, or nil.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return errs.NewValidation("Validation failed", r)
}

// Check validates v against its validate tags.
func Check(v interface{}) Result {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return Result{{Field: "", Message: err.Error()}}
	}

	result := make(Result, 0, len(validationErrors))
	for _, fe := range validationErrors {
		result = append(result, errs.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return result
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return fmt.Sprintf("must match %s", lowerFirst(fe.Param()))
	case "username":
		return "may only contain letters, numbers and underscores"
	case "strongpassword":
		return "must contain at least one lowercase letter, one uppercase letter and one number"
	case "phone":
		return "must be a valid phone number"
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
