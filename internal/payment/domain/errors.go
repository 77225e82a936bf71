package domain

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindValidationFailed    ErrorKind = "validation_failed"
	KindDuplicateExternalID ErrorKind = "duplicate_external_id"
	KindCreateFailed        ErrorKind = "create_failed"
	KindNotFound            ErrorKind = "not_found"
	KindLookupFailed        ErrorKind = "lookup_failed"
)

// Violation describes one field that failed validation.
type Violation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	CodeRequired            = "required"
	CodeTooLong             = "too_long"
	CodeInvalidFormat       = "invalid_format"
	CodeNotPositive         = "not_positive"
	CodeInvalidPrecision    = "invalid_precision"
	CodeOutOfRange          = "out_of_range"
	CodeUnsupportedCurrency = "unsupported_currency"
)

type Violations []Violation

// Message joins the violation messages into a single sentence list.
func (v Violations) Message() string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, 0, len(v))
	for _, violation := range v {
		parts = append(parts, violation.Message)
	}
	return strings.Join(parts, ". ") + "."
}

// Error is the single error type returned by the payment service.
type Error struct {
	Kind       ErrorKind
	ExternalID string
	Violations Violations
	Cause      error
}

var (
	ErrValidationFailed    = &Error{Kind: KindValidationFailed}
	ErrDuplicateExternalID = &Error{Kind: KindDuplicateExternalID}
	ErrCreateFailed        = &Error{Kind: KindCreateFailed}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrLookupFailed        = &Error{Kind: KindLookupFailed}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidationFailed:
		if msg := e.Violations.Message(); msg != "" {
			return msg
		}
		return "validation failed"
	case KindDuplicateExternalID:
		return fmt.Sprintf("Payment with external_id %s already exists", e.ExternalID)
	case KindNotFound:
		return fmt.Sprintf("Payment with external_id %s not found", e.ExternalID)
	case KindCreateFailed:
		return withCause("Error saving payment", e.Cause)
	case KindLookupFailed:
		return withCause("Error getting payment", e.Cause)
	default:
		return withCause(string(e.Kind), e.Cause)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind carried by err, or an empty kind when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func NewValidationError(violations Violations) *Error {
	return &Error{Kind: KindValidationFailed, Violations: violations}
}

func NewDuplicateError(externalID string) *Error {
	return &Error{Kind: KindDuplicateExternalID, ExternalID: externalID}
}

func NewCreateError(externalID string, cause error) *Error {
	return &Error{Kind: KindCreateFailed, ExternalID: externalID, Cause: cause}
}

func NewNotFoundError(externalID string) *Error {
	return &Error{Kind: KindNotFound, ExternalID: externalID}
}

func NewLookupError(externalID string, cause error) *Error {
	return &Error{Kind: KindLookupFailed, ExternalID: externalID, Cause: cause}
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return msg + ": " + cause.Error()
}
