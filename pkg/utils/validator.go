package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"taskmanager-api/domain/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator, configured to report JSON field
// names and to understand the "taskstatus" tag.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v, err := newValidator()
		if err != nil {
			panic("utils: validator setup: " + err.Error())
		}
		validate = v
	})
	return validate
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	err := v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(fl.Field().String()).IsValid()
	})
	if err != nil {
		return nil, fmt.Errorf("register taskstatus: %w", err)
	}
	return v, nil
}

func ValidateStruct(s any) error {
	return Validator().Struct(s)
}

func ValidateVar(field any, tag string) error {
	return Validator().Var(field, tag)
}

// GetValidationErrors flattens a validator error into json-field -> message.
func GetValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err != nil {
			out["non_field_errors"] = err.Error()
		}
		return out
	}

	for _, fe := range verrs {
		field := fe.Field()
		if _, exists := out[field]; exists {
			continue
		}
		out[field] = validationMessage(fe)
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "taskstatus":
		return fmt.Sprintf("%q is not a valid choice.", fe.Value())
	case "alphanumunicode":
		return "Enter a valid username."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
