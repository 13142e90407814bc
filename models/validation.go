package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"magis-site/internal/status"
)

var validate = newValidator()

// newValidator reports fields by their json name so errors line up with the
// form inputs.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is returned (wrapped in status.ErrInvalidInput) when a model
// fails validation; Fields maps the json field name to a message that can
// be shown next to the form input.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+" "+msg)
	}
	return strings.Join(parts, "; ")
}

func (e *FieldError) Unwrap() error {
	return status.ErrInvalidInput
}

// Invalid builds a single-field validation error.
func Invalid(field, msg string) error {
	return &FieldError{Fields: map[string]string{field: msg}}
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", status.ErrInvalidInput, err)
	}

	fe := &FieldError{Fields: map[string]string{}}
	for _, v := range verrs {
		fe.Fields[v.Field()] = message(v)
	}
	return fe
}

func message(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "é obrigatório"
	case "email":
		return "deve ser um e-mail válido"
	case "url":
		return "deve ser uma URL válida"
	case "oneof":
		return "deve ser um de: " + v.Param()
	case "max":
		return "deve ter no máximo " + v.Param() + " caracteres"
	case "min", "gte":
		return "deve ser no mínimo " + v.Param()
	case "lte":
		return "deve ser no máximo " + v.Param()
	default:
		return "é inválido"
	}
}
