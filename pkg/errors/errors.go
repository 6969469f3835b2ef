// Package errors carries the shop's typed error codes and how each one is presented over HTTP.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	CodeInsufficientStock    Code = "INSUFFICIENT_STOCK"
	CodeEmptyCart            Code = "EMPTY_CART"
	CodeInvalidTransition    Code = "INVALID_TRANSITION"
	CodeStaleOrderState      Code = "STALE_ORDER_STATE"
	CodeInvalidDepositAmount Code = "INVALID_DEPOSIT_AMOUNT"
)

// Metadata is how a code is rendered: status, whether a client may retry, the fallback message,
// and whether Details may be shown.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

const (
	retryable = true
	final     = false
	detailed  = true
	opaque    = false
)

var metadataByCode = map[Code]Metadata{
	CodeValidation:    {http.StatusBadRequest, final, "validation failed", detailed},
	CodeUnauthorized:  {http.StatusUnauthorized, final, "authentication required", opaque},
	CodeForbidden:     {http.StatusForbidden, final, "access denied", opaque},
	CodeNotFound:      {http.StatusNotFound, final, "resource not found", opaque},
	CodeConflict:      {http.StatusConflict, final, "conflict detected", opaque},
	CodeStateConflict: {http.StatusUnprocessableEntity, final, "state transition disallowed", detailed},
	CodeIdempotency:   {http.StatusConflict, final, "idempotency key reused", detailed},
	CodeRateLimit:     {http.StatusTooManyRequests, final, "rate limit exceeded", opaque},
	CodeInternal:      {http.StatusInternalServerError, retryable, "internal server error", opaque},
	CodeDependency:    {http.StatusServiceUnavailable, retryable, "dependency unavailable", detailed},

	CodeInsufficientStock:    {http.StatusConflict, final, "insufficient stock", detailed},
	CodeEmptyCart:            {http.StatusUnprocessableEntity, final, "cart is empty", opaque},
	CodeInvalidTransition:    {http.StatusConflict, final, "order status transition not allowed", detailed},
	CodeStaleOrderState:      {http.StatusConflict, retryable, "order was modified concurrently", detailed},
	CodeInvalidDepositAmount: {http.StatusUnprocessableEntity, final, "invalid deposit amount", detailed},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a coded failure with an optional client-safe payload and an underlying cause.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf formats the message like fmt.Sprintf.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code to err. A nil err yields a plain New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails returns a copy carrying details, leaving the receiver untouched.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.details = details
	return &clone
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	// The cause stays out of the text; Dump walks the chain when it is needed.
	return string(e.code) + ": " + e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is reports whether any *Error in err's chain carries code, not only the outermost one.
func Is(err error, code Code) bool {
	for err != nil {
		var typed *Error
		if !stdErrors.As(err, &typed) || typed == nil {
			return false
		}
		if typed.code == code {
			return true
		}
		err = typed.cause
	}
	return false
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
