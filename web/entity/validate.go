package entity

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return PasswordProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("useremail", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	return v
}

// Validate checks a request body. Failures are returned as a
// *ValidationError located in the body.
func Validate(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, NewFieldError(LocBody, fe.Field(), fieldMessage(fe), fieldType(fe)))
	}
	return NewValidationError(details...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "useremail":
		return "Invalid email format"
	case "password":
		return PasswordProblem(reflect.Indirect(reflect.ValueOf(fe.Value())).String())
	case "max":
		return "Value should have at most " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}

func fieldType(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "missing"
	}
	return "value_error"
}
