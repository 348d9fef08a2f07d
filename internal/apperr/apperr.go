package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an error for retry decisions and HTTP mapping
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindUpstreamTimeout    Kind = "upstream_timeout"
	KindUpstreamConnection Kind = "upstream_connection"
	KindUpstreamParse      Kind = "upstream_parse"
	KindConfigNotFound     Kind = "config_not_found"
	KindInternal           Kind = "internal"
)

// Error is a typed application error wrapping an optional cause
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// InvalidInput marks a caller error that must never be retried
func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// NotFound marks a missing upstream or stored record, terminal for the caller
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// UpstreamTimeout marks a timed-out call against an external registry
func UpstreamTimeout(message string, cause error) *Error {
	return &Error{Kind: KindUpstreamTimeout, Message: message, Cause: cause}
}

// UpstreamConnection marks a transport failure against an external registry
func UpstreamConnection(message string, cause error) *Error {
	return &Error{Kind: KindUpstreamConnection, Message: message, Cause: cause}
}

// UpstreamParse marks an unparseable response from an external registry
func UpstreamParse(message string, cause error) *Error {
	return &Error{Kind: KindUpstreamParse, Message: message, Cause: cause}
}

// ConfigNotFound marks a missing vehicle configuration record
func ConfigNotFound(message string) *Error {
	return &Error{Kind: KindConfigNotFound, Message: message}
}

// Internal marks an unexpected failure
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf extracts the Kind from an error chain, KindInternal if untyped
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether err is a transient transport failure.
// Validation and not-found errors are never retryable.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindUpstreamTimeout, KindUpstreamConnection:
		return true
	}
	return false
}
