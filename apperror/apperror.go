package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a failure so the HTTP layer can pick a status code.
type Kind string

const (
	KindUnauthenticated       Kind = "unauthenticated"
	KindForbidden             Kind = "forbidden"
	KindNotFound              Kind = "not_found"
	KindInvalidArgument       Kind = "invalid_argument"
	KindConflict              Kind = "conflict"
	KindPaymentProcessorError Kind = "payment_processor_error"
	KindStoreError            Kind = "store_error"
)

// Error is the error type returned by every service in this module.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind so callers can write
// errors.Is(err, apperror.ErrConflict).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthenticated       = &Error{Kind: KindUnauthenticated}
	ErrForbidden             = &Error{Kind: KindForbidden}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrInvalidArgument       = &Error{Kind: KindInvalidArgument}
	ErrConflict              = &Error{Kind: KindConflict}
	ErrPaymentProcessorError = &Error{Kind: KindPaymentProcessorError}
	ErrStoreError            = &Error{Kind: KindStoreError}
)

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// PaymentProcessor wraps a processor failure, keeping the processor's own
// message visible to the caller.
func PaymentProcessor(message string, err error) *Error {
	return &Error{Kind: KindPaymentProcessorError, Message: message, Err: err}
}

// Store wraps a database failure.
func Store(message string, err error) *Error {
	return &Error{Kind: KindStoreError, Message: message, Err: err}
}

// KindOf reports the kind of err. Anything that is not an *Error is
// treated as a store failure.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStoreError
}

// HTTPStatus maps err to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInvalidArgument:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	case KindPaymentProcessorError:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
