// Package validation holds the input format checks performed before any
// request reaches the login core.
package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// phonePattern matches 11-digit mainland mobile numbers.
	phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

	// smsCodePattern matches exactly six digits.
	smsCodePattern = regexp.MustCompile(`^\d{6}$`)
)

// IsValidPhoneNumber reports whether s is a well-formed mobile number.
func IsValidPhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}

// IsValidSMSCode reports whether s is a well-formed 6-digit SMS code.
func IsValidSMSCode(s string) bool {
	return smsCodePattern.MatchString(s)
}

// RegisterCustomValidators installs the cnmobile and smscode binding tags
// on gin's validator engine. Call once before routes are registered.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("cnmobile", func(fl validator.FieldLevel) bool {
		return IsValidPhoneNumber(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.RegisterValidation("smscode", func(fl validator.FieldLevel) bool {
		return IsValidSMSCode(fl.Field().String())
	})
}
