package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// ErrNotStruct is returned when ValidateStruct receives a non-struct value.
var ErrNotStruct = errors.New("validator: expected a struct")

var (
	validateOnce sync.Once
	validate     *playground.Validate
)

// instance lazily builds the shared validator. Field names come from the
// json tag so error output matches the wire format.
func instance() *playground.Validate {
	validateOnce.Do(func() {
		validate = playground.New(playground.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct checks v against its `validate` struct tags and returns
// ValidationErrors on failure.
func ValidateStruct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var invalid *playground.InvalidValidationError
	if errors.As(err, &invalid) {
		return ErrNotStruct
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	ve := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		ve = append(ve, fromFieldError(fe))
	}
	return ve
}

// fromFieldError maps a go-playground error onto the shared ValidationError
// shape, including translation keys for the common tags.
func fromFieldError(fe playground.FieldError) ValidationError {
	field := fe.Field()
	values := map[string]any{"field": field}

	var message, key string
	switch fe.Tag() {
	case "required":
		message, key = "is required", "validation.required"
	case "email":
		message, key = "must be a valid email address", "validation.email"
	case "url":
		message, key = "must be a valid URL", "validation.url"
	case "uuid", "uuid4":
		message, key = "must be a valid UUID", "validation.uuid"
	case "oneof":
		message = "must be one of: " + fe.Param()
		key = "validation.one_of"
		values["options"] = fe.Param()
	case "min":
		values["min"] = fe.Param()
		if fe.Kind() == reflect.String {
			message = fmt.Sprintf("must be at least %s characters", fe.Param())
			key = "validation.min_length"
		} else {
			message = fmt.Sprintf("must be at least %s", fe.Param())
			key = "validation.min"
		}
	case "max":
		values["max"] = fe.Param()
		if fe.Kind() == reflect.String {
			message = fmt.Sprintf("must not exceed %s characters", fe.Param())
			key = "validation.max_length"
		} else {
			message = fmt.Sprintf("must not exceed %s", fe.Param())
			key = "validation.max"
		}
	case "len":
		message = fmt.Sprintf("must be exactly %s characters", fe.Param())
		key = "validation.exact_length"
		values["length"] = fe.Param()
	case "eqfield":
		message = "must match " + fe.Param()
		key = "validation.eq_field"
		values["other"] = fe.Param()
	default:
		message = "failed on the '" + fe.Tag() + "' rule"
		key = "validation." + fe.Tag()
	}

	return ValidationError{
		Field:             field,
		Message:           message,
		TranslationKey:    key,
		TranslationValues: values,
	}
}
