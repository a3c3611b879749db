package service

import "errors"

// Kind classifies catalog failures
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindPersistence        Kind = "persistence_error"
	KindMethodNotSupported Kind = "method_not_supported"
)

var defaultMessages = map[Kind]string{
	KindInvalidInput:       "bad request",
	KindNotFound:           "resource not found",
	KindPersistence:        "unprocessable",
	KindMethodNotSupported: "method not allowed",
}

// DefaultMessage returns the generic client-facing message for a kind
func DefaultMessage(kind Kind) string {
	return defaultMessages[kind]
}

// Error is a catalog failure with a machine-readable kind and a client-facing message
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending input for KindInvalidInput
	Field string
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is checks
var (
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Message: DefaultMessage(KindInvalidInput)}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: DefaultMessage(KindNotFound)}
	ErrPersistence  = &Error{Kind: KindPersistence, Message: DefaultMessage(KindPersistence)}
)

// NewInvalidInput reports a missing or malformed field
func NewInvalidInput(field, message string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: message}
}

// NewNotFound reports an absent record or an empty result; an empty message uses the default
func NewNotFound(message string) *Error {
	if message == "" {
		message = DefaultMessage(KindNotFound)
	}
	return &Error{Kind: KindNotFound, Message: message}
}

// NewPersistence reports a failed write or delete
func NewPersistence(cause error) *Error {
	return &Error{Kind: KindPersistence, Message: DefaultMessage(KindPersistence), Cause: cause}
}

// KindOf returns the kind of err, or "" when err is not a catalog error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a NotFound catalog error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
