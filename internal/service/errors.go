package service

import "fmt"

type ErrorCode string

const (
	CodeValidation        ErrorCode = "validation_error"
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeForbidden         ErrorCode = "forbidden"
	CodeNotFound          ErrorCode = "not_found"
	CodeConflict          ErrorCode = "conflict"
	CodePaymentFailed     ErrorCode = "payment_failed"
	CodeInvalidTransition ErrorCode = "invalid_state_transition"
	CodeInternal          ErrorCode = "internal_error"
)

// Error is the failure shape services hand to the API boundary. The message
// is user-facing; the code picks the HTTP status.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) *Error {
	return Errorf(CodeValidation, format, args...)
}

func notFoundError(format string, args ...interface{}) *Error {
	return Errorf(CodeNotFound, format, args...)
}

func forbiddenError(format string, args ...interface{}) *Error {
	return Errorf(CodeForbidden, format, args...)
}
