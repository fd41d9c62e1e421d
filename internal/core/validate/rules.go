// Package validate holds the pure input rules of the marketplace and the
// username uniqueness check.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/haofuwu/service-market/internal/core/domain"
)

const (
	minPasswordLen    = 6
	minPasswordDigits = 2
)

var phonePattern = regexp.MustCompile(`^1\d{10}$`)

// Password reports whether pw is at least six characters long, contains at
// least two digits and mixes upper and lower case.
func Password(pw string) bool {
	if utf8.RuneCountInString(pw) < minPasswordLen {
		return false
	}
	digits := 0
	for _, r := range pw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minPasswordDigits {
		return false
	}
	allUpper := pw == strings.ToUpper(pw)
	allLower := pw == strings.ToLower(pw)
	return !allUpper && !allLower
}

// Phone reports whether phone is an 11-digit mobile number starting with 1.
func Phone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// New returns a validator with the marketplace tags registered:
//
//	password     Password rule
//	phone        Phone rule
//	servicetype  known service category
func New() *validator.Validate {
	v := validator.New()
	rules := map[string]validator.Func{
		"password": func(fl validator.FieldLevel) bool {
			return Password(fl.Field().String())
		},
		"phone": func(fl validator.FieldLevel) bool {
			return Phone(fl.Field().String())
		},
		"servicetype": func(fl validator.FieldLevel) bool {
			return domain.ValidServiceType(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validate: register %q: %v", tag, err))
		}
	}
	return v
}

// Struct validates s and flattens any field errors into one message wrapped
// in domain.ErrValidation.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fieldError(fe))
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "password":
		return field + " must be at least 6 characters with 2 digits and mixed case"
	case "phone":
		return field + " must be an 11-digit number starting with 1"
	case "servicetype":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(domain.ServiceTypes, " "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
