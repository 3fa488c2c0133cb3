package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct tag validation and converts the first failure into a
// ValidationError keyed by the JSON-ish field name.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return NewValidationError("", err.Error())
	}

	e := validationErrors[0]
	field := toSnake(e.Field())
	switch e.Tag() {
	case "required":
		return NewValidationError(field, "field is required")
	case "email":
		return NewValidationError(field, "invalid email format")
	case "url":
		return NewValidationError(field, "invalid URL")
	case "oneof":
		return NewValidationError(field, "must be one of: "+e.Param())
	case "min":
		return NewValidationError(field, "must be at least "+e.Param())
	case "max":
		return NewValidationError(field, "must be at most "+e.Param())
	default:
		return NewValidationError(field, fmt.Sprintf("failed %s validation", e.Tag()))
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
