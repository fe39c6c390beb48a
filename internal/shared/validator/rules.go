package validator

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	digitsRegex  = regexp.MustCompile(`^\d+$`)
	cnicRegex    = regexp.MustCompile(`^\d{13}$`)
	contactRegex = regexp.MustCompile(`^\d{10,15}$`)
	monthRegex   = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// ValidateDigits accepts a non-empty string of ASCII digits (member user_id)
func ValidateDigits(fl validator.FieldLevel) bool {
	return digitsRegex.MatchString(fl.Field().String())
}

// ValidateCNIC accepts exactly 13 digits
func ValidateCNIC(fl validator.FieldLevel) bool {
	return cnicRegex.MatchString(fl.Field().String())
}

// ValidateContact accepts a 10 to 15 digit phone number
func ValidateContact(fl validator.FieldLevel) bool {
	return contactRegex.MatchString(fl.Field().String())
}

// ValidateBillingMonth accepts YYYY-MM with a real month (01-12)
func ValidateBillingMonth(fl validator.FieldLevel) bool {
	return IsBillingMonth(fl.Field().String())
}

func IsBillingMonth(month string) bool {
	if !monthRegex.MatchString(month) {
		return false
	}
	_, err := time.Parse("2006-01", month)
	return err == nil
}
