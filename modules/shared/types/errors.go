package types

import "errors"

// ErrorKind classifies failures so transports can map them without knowing
// every module's sentinel errors.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstreamUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return "internal"
	}
}

// Error is a classified sentinel. Declare them as package-level vars and
// compare with errors.Is; wrap them with fmt.Errorf("...: %w", err).
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func NewError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string { return e.Message }

// Shared sentinels.
var (
	ErrInvalidID           = NewError(KindValidation, "invalid_id", "invalid identifier format")
	ErrUnauthorized        = NewError(KindUnauthorized, "unauthorized", "Unauthorized")
	ErrForbidden           = NewError(KindForbidden, "forbidden", "Forbidden: Insufficient permissions")
	ErrUpstreamUnavailable = NewError(KindUpstreamUnavailable, "upstream_unavailable", "upstream service unavailable")
	ErrConcurrentUpdate    = NewError(KindConflict, "concurrent_update", "resource was modified concurrently")
)

// KindOf returns the kind of the first classified error in err's chain.
// Unclassified errors are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the message safe to show to callers. Errors may
// override the sentinel text by implementing PublicMessage() string
// (e.g. to name the offending product).
func PublicMessage(err error) string {
	var pm interface{ PublicMessage() string }
	if errors.As(err, &pm) {
		return pm.PublicMessage()
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal Server Error"
}

// Code returns the machine readable reason for err.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}
