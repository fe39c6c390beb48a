package validator

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
	initErr  error
)

// GetValidator returns the shared validator instance with all common rules registered
func GetValidator() (*validator.Validate, error) {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// Report json names (user_id, cnic...) instead of Go field names
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

		if err := RegisterAll(v); err != nil {
			initErr = err
			return
		}
		instance = v
	})
	return instance, initErr
}

// RegisterAll registers all common validators defined in this package
func RegisterAll(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"digits":        ValidateDigits,
		"cnic":          ValidateCNIC,
		"contact":       ValidateContact,
		"billing_month": ValidateBillingMonth,
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("%s validator 등록 실패: %w", tag, err)
		}
	}

	slog.Debug("공통 Validator 등록 완료", "validators", "digits,cnic,contact,billing_month")
	return nil
}

// Struct validates s and converts the first failure into a FieldError.
func Struct(s any) error {
	v, err := GetValidator()
	if err != nil {
		return fmt.Errorf("validator 엔진 가져오기 실패: %w", err)
	}
	if err := v.Struct(s); err != nil {
		if fieldErr, ok := ToFieldError(err); ok {
			return fieldErr
		}
		return err
	}
	return nil
}
