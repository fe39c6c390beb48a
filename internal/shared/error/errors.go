package error

import (
	"errors"
	"fmt"
)

type DomainError interface {
	error // Embed standard error interface
	Info() string
}

type domainSentinel struct {
	errInfo string
}

func (e *domainSentinel) Error() string {
	return e.errInfo
}

func (e *domainSentinel) Info() string {
	return e.errInfo
}

// FieldError names the field that caused a domain error.
// It unwraps to Kind so errors.Is(err, ErrValidation) keeps working.
type FieldError struct {
	Field  string
	Reason string
	Kind   DomainError
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Reason, e.Kind.Info())
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// NewFieldError creates a FieldError of the given kind.
func NewFieldError(kind DomainError, field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason, Kind: kind}
}

// ErrorResponse is the user-facing rendering of an error
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"` // client message
	Field   string `json:"field,omitempty"`
}

// Common errors
var (
	domainErrorResponses = map[string]ErrorResponse{}

	// ValidationFailed indicates the input failed validation
	ValidationFailed = ErrorResponse{
		Code:    "ERROR-001",
		Message: "입력값이 올바르지 않습니다.",
	}

	// InternalError indicates an unexpected storage or runtime error
	InternalError = ErrorResponse{
		Code:    "ERROR-003",
		Message: "내부 오류가 발생했습니다.",
	}
)

// NewDomainError creates a sentinel error that can participate in error chains.
func NewDomainError(errInfo string) DomainError {
	return &domainSentinel{errInfo: errInfo}
}

// RegisterDomainErrorResponse registers a mapping between a domain error errInfo and a shared error response.
func RegisterDomainErrorResponse(errInfo string, resp ErrorResponse) {
	domainErrorResponses[errInfo] = resp
}

// ResolveDomainError converts a domain error into a shared error response if a mapping exists.
// The offending field is copied from a FieldError in the chain.
func ResolveDomainError(err error) (ErrorResponse, bool) {
	if err == nil {
		return ErrorResponse{}, false
	}

	var domainErr DomainError
	if !errors.As(err, &domainErr) {
		return ErrorResponse{}, false
	}

	resp, ok := domainErrorResponses[domainErr.Info()]
	if !ok {
		return ErrorResponse{}, false
	}

	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		resp.Field = fieldErr.Field
		resp.Message = fmt.Sprintf("%s (%s)", resp.Message, fieldErr.Reason)
	}
	return resp, true
}

// Resolve is ResolveDomainError with InternalError as fallback.
func Resolve(err error) ErrorResponse {
	if resp, ok := ResolveDomainError(err); ok {
		return resp
	}
	return InternalError
}
