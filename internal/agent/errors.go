package agent

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed taxonomy of domain failures. Every handler failure
// the router surfaces to a caller carries one of these kinds.
type ErrorKind string

const (
	KindUnsupportedFileType ErrorKind = "UnsupportedFileType"
	KindUnreadablePdf       ErrorKind = "UnreadablePdf"
	KindMalformedCsv        ErrorKind = "MalformedCsv"
	KindUnknownSuggestion   ErrorKind = "UnknownSuggestion"
	KindMissingArtifact     ErrorKind = "MissingArtifact"
	KindModelUnavailable    ErrorKind = "ModelUnavailable"
	KindModelTimeout        ErrorKind = "ModelTimeout"

	// KindInternal is the escape hatch for bugs; it is not part of the
	// caller-facing contract and should never show up in normal operation.
	KindInternal ErrorKind = "Internal"
)

// Error is a domain failure. Handlers return these; the router converts them
// into error-mode turns instead of propagating them to the transport.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a domain error with a formatted detail message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WrapErr attaches an underlying collaborator error to a domain error.
func WrapErr(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the taxonomy kind from any error, defaulting to Internal
// for errors that escaped without classification.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// DetailOf returns the human-readable detail of a domain error, or the raw
// error string for unclassified errors.
func DetailOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Detail
	}
	return err.Error()
}
