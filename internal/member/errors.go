package member

import (
	sharedError "github.com/kchsoft/gym-ledger/internal/shared/error"
	"github.com/kchsoft/gym-ledger/internal/shared/validator"
)

const (
	duplicateKey    = "DUPLICATE_KEY"     // errInfo
	memberNotFound  = "MEMBER_NOT_FOUND"  // errInfo
	userIDImmutable = "USER_ID_IMMUTABLE" // errInfo
)

var (
	ErrDuplicateKey    = sharedError.NewDomainError(duplicateKey)
	ErrMemberNotFound  = sharedError.NewDomainError(memberNotFound)
	ErrUserIDImmutable = sharedError.NewDomainError(userIDImmutable)

	// ErrValidation is shared with the validator so FieldErrors from either source match
	ErrValidation = validator.ErrValidation
)

func init() {
	sharedError.RegisterDomainErrorResponse(memberNotFound, sharedError.ErrorResponse{
		Code:    "MEMBER-001",
		Message: "활성 회원 정보를 찾을 수 없습니다.",
	})

	sharedError.RegisterDomainErrorResponse(duplicateKey, sharedError.ErrorResponse{
		Code:    "MEMBER-002",
		Message: "이미 등록된 User ID 또는 CNIC입니다.",
	})

	sharedError.RegisterDomainErrorResponse(userIDImmutable, sharedError.ErrorResponse{
		Code:    "MEMBER-003",
		Message: "결제 내역이 있는 회원의 User ID는 변경할 수 없습니다.",
	})
}
