package rpc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/models"
)

// NewValidator returns a validator that reports fields by their JSON name and
// knows the domain formats slug, rgbhex, cpf and cep.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return models.ValidSlug(fl.Field().String())
	})
	mustRegister(v, "rgbhex", func(fl validator.FieldLevel) bool {
		return models.ValidColor(fl.Field().String())
	})
	mustRegister(v, "cpf", func(fl validator.FieldLevel) bool {
		return models.ValidCPF(models.NormalizeCPF(fl.Field().String()))
	})
	mustRegister(v, "cep", func(fl validator.FieldLevel) bool {
		return models.ValidCEP(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validationError turns validator output into a VALIDATION error with
// field-level detail.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.ValidationFailed(map[string]string{"input": "invalid input"})
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return apperr.ValidationFailed(fields)
}

// fieldPath joins the JSON names of the path, skipping the top-level struct
// and embedded structs, which carry Go names.
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	out := parts[:0]
	for _, p := range parts[1:] {
		if p != "" && unicode.IsUpper(rune(p[0])) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return fe.Field()
	}
	return strings.Join(out, ".")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "len":
		return fmt.Sprintf("must have exactly %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a valid id"
	case "url", "http_url":
		return "must be an absolute URL"
	case "email":
		return "must be a valid email"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "slug":
		return "must contain only lowercase letters, digits and hyphens"
	case "rgbhex":
		return "must be a #RRGGBB colour"
	case "cpf":
		return "invalid CPF"
	case "cep":
		return "must have 8 digits"
	}
	return "invalid value"
}
