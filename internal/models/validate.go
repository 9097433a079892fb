package models

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var validCareers = map[string]bool{
	"Web Development":    true,
	"Mobile Development": true,
	"UI/UX":              true,
	"Data Science":       true,
	"Business":           true,
	"Other":              true,
}

var urlRe = regexp.MustCompile(`^https?://`)

func newValidator() *validator.Validate {
	v := validator.New()

	// Career list values carry spaces, so oneof can't express them.
	if err := v.RegisterValidation("career", careerField); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("httpurl", httpURLField); err != nil {
		panic(err)
	}
	return v
}

// ValidEmail reports whether s is a well-formed email address. Partial
// updates bypass struct validation, so they check the field on its own.
func ValidEmail(s string) bool {
	return validate.Var(s, "email") == nil
}

func careerField(fl validator.FieldLevel) bool {
	return validCareers[fl.Field().String()]
}

func httpURLField(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	return urlRe.MatchString(s)
}
