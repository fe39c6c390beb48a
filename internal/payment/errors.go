package payment

import (
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
	"github.com/kchsoft/gym-ledger/internal/shared/validator"
)

const (
	noActiveMember   = "NO_ACTIVE_MEMBER"  // errInfo
	amountMismatch   = "AMOUNT_MISMATCH"   // errInfo
	periodExhausted  = "PERIOD_EXHAUSTED"  // errInfo
	duplicatePayment = "DUPLICATE_PAYMENT" // errInfo
)

var (
	ErrNoActiveMember   = sharedError.NewDomainError(noActiveMember)
	ErrAmountMismatch   = sharedError.NewDomainError(amountMismatch)
	ErrPeriodExhausted  = sharedError.NewDomainError(periodExhausted)
	ErrDuplicatePayment = sharedError.NewDomainError(duplicatePayment)

	ErrValidation = validator.ErrValidation
)

func init() {
	sharedError.RegisterDomainErrorResponse(noActiveMember, sharedError.ErrorResponse{
		Code:    "PAYMENT-001",
		Message: "결제할 활성 회원이 선택되지 않았습니다.",
	})

	sharedError.RegisterDomainErrorResponse(amountMismatch, sharedError.ErrorResponse{
		Code:    "PAYMENT-002",
		Message: "결제 금액이 회원의 총 요금과 일치하지 않습니다.",
	})

	sharedError.RegisterDomainErrorResponse(periodExhausted, sharedError.ErrorResponse{
		Code:    "PAYMENT-003",
		Message: "이번 달 15일 결제 2건이 이미 등록되었습니다.",
	})

	sharedError.RegisterDomainErrorResponse(duplicatePayment, sharedError.ErrorResponse{
		Code:    "PAYMENT-004",
		Message: "해당 월의 결제가 이미 등록되었습니다.",
	})
}
