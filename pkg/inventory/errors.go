package inventory

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInsufficientStock
	KindInvalidTransition
	KindPaymentVerification
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindValidation:          "validation",
	KindConflict:            "conflict",
	KindUnauthorized:        "unauthorized",
	KindForbidden:           "forbidden",
	KindNotFound:            "not_found",
	KindInsufficientStock:   "insufficient_stock",
	KindInvalidTransition:   "invalid_transition",
	KindPaymentVerification: "payment_verification",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by every domain operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Anything that is not an *Error is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

func validation(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func conflict(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }
func forbidden(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }
func notFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }

func unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func invalidTransition(msg string) error {
	return &Error{Kind: KindInvalidTransition, Message: msg}
}

func internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
