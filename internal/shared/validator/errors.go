package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
)

// ErrValidation is the kind carried by every FieldError produced here
var ErrValidation = sharedError.NewDomainError("VALIDATION_FAILED")

func init() {
	sharedError.RegisterDomainErrorResponse("VALIDATION_FAILED", sharedError.ValidationFailed)
}

// ToFieldError converts validator errors into a FieldError naming the offending field.
func ToFieldError(err error) (*sharedError.FieldError, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}

	if len(validationErrors) == 0 {
		return nil, false
	}

	// 첫 번째 validation error만 반환 (사용자 친화적)
	fieldErr := validationErrors[0]
	return sharedError.NewFieldError(ErrValidation, fieldErr.Field(), getErrorMessage(fieldErr)), true
}

// getErrorMessage returns user-friendly error message for validation error
func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "필수 항목을 입력해 주세요."
	case "max":
		return fmt.Sprintf("최대 %s자까지 입력 가능합니다.", fe.Param())
	case "gt":
		return "0보다 큰 값이어야 합니다."
	case "oneof":
		return fmt.Sprintf("다음 중 하나여야 합니다: %s", fe.Param())
	case "digits":
		return "숫자만 입력 가능합니다."
	case "cnic":
		return "CNIC는 13자리 숫자여야 합니다."
	case "contact":
		return "연락처는 10~15자리 숫자여야 합니다."
	case "datetime":
		return "날짜 형식이 올바르지 않습니다. (YYYY-MM-DD)"
	case "billing_month":
		return "월 형식이 올바르지 않습니다. (YYYY-MM)"
	default:
		return fmt.Sprintf("'%s' 필드가 올바르지 않습니다.", fe.Field())
	}
}
