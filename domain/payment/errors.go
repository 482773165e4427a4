package payment

import "fmt"

// ErrorKind is the closed set of failure categories the gateway can
// return. Every kind maps to exactly one HTTP status.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindConflict
	KindUnavailable
	KindInternal
)

func (k ErrorKind) StatusCode() int {
	switch k {
	case KindValidation:
		return 400
	case KindConflict:
		return 409
	case KindUnavailable:
		return 503
	default:
		return 500
	}
}

type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationError(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

var (
	ErrInvalidBody          = validationError("INVALID_REQUEST_BODY", "malformed request body")
	ErrInvalidCorrelationId = validationError("INVALID_CORRELATION_ID", "correlationId must be a valid UUID")
	ErrInvalidAmount        = validationError("INVALID_AMOUNT", "amount must be between 0.01 and 999999.99")
	ErrAlreadyExists        = &Error{Kind: KindConflict, Code: "PAYMENT_ALREADY_EXISTS", Message: "payment with this correlation ID already exists"}
	ErrProcessorUnavailable = &Error{Kind: KindUnavailable, Code: "PROCESSOR_UNAVAILABLE", Message: "all payment processors are currently unavailable"}
	ErrInternal             = &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "unexpected internal error"}
)
