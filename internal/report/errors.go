package report

import (
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
	"github.com/kchsoft/gym-ledger/internal/shared/validator"
)

const invalidReport = "INVALID_REPORT" // errInfo

var (
	ErrInvalidReport = sharedError.NewDomainError(invalidReport)
	ErrValidation    = validator.ErrValidation
)

func init() {
	sharedError.RegisterDomainErrorResponse(invalidReport, sharedError.ErrorResponse{
		Code:    "REPORT-001",
		Message: "지원하지 않는 리포트 조건입니다.",
	})
}
