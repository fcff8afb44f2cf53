package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies a ledger failure. Every failure path returns exactly one
// kind; callers branch on the kind, not the message.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindBorrowLimitExceeded Kind = "borrow_limit_exceeded"
	KindDuplicateRequest    Kind = "duplicate_request"
	KindBookUnavailable     Kind = "book_unavailable"
	KindAlreadyProcessed    Kind = "already_processed"
	KindValidationFailed    Kind = "validation_failed"
	KindPersistenceFailure  Kind = "persistence_failure"
)

// Error is a structured ledger failure: a kind, a human-readable message and
// the context fields the API reports back (current status, limits, counts).
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) with(key string, value interface{}) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// persistence wraps an underlying storage error. The enclosing transaction
// is rolled back by the caller returning this error.
func persistence(err error) *Error {
	return &Error{Kind: KindPersistenceFailure, Message: "storage failure", cause: err}
}

// KindOf extracts the failure kind from err, or "" for non-ledger errors.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// IsKind reports whether err is a ledger error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
