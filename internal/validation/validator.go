// Package validation validates request structs with go-playground/validator and converts failures to domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/brainlyapp/brainly-server/internal/domain"
	domainerrors "github.com/brainlyapp/brainly-server/internal/errors"
)

// passwordSpecials are the symbols accepted by the strong_password rule.
const passwordSpecials = "!@#$%^&*"

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the project's custom rules registered:
//
//	https_link       non-empty and starting with "https"
//	content_type     one of the domain content types
//	strong_password  upper, lower, digit and one of !@#$%^&*
//	trimmed_required non-empty after trimming whitespace
func New() *Validator {
	v := validator.New()

	// Report JSON field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "https_link", func(fl validator.FieldLevel) bool {
		return domain.IsSecureLink(fl.Field().String())
	})
	mustRegister(v, "content_type", func(fl validator.FieldLevel) bool {
		return domain.ContentType(fl.Field().String()).Valid()
	})
	mustRegister(v, "strong_password", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	mustRegister(v, "trimmed_required", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate validates a struct and returns a *domainerrors.Error with per-field details.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[fieldPath(e)] = friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

// fieldPath drops the top-level struct name from the namespace so nested
// and slice fields read as "tags[1]" rather than "CreateContentRequest.tags[1]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

//nolint:gocyclo // Exhaustive switch over validation tags.
func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "trimmed_required":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must not contain more than %s items", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	case "eq":
		return "must equal " + e.Param()
	case "https_link":
		return "must be a link starting with https"
	case "content_type":
		return "must be one of: " + strings.Join(domain.ContentTypeNames(), " ")
	case "strong_password":
		return "must contain an upper-case letter, a lower-case letter, a digit and one of " + passwordSpecials
	default:
		return "is invalid"
	}
}

func isStrongPassword(s string) bool {
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
