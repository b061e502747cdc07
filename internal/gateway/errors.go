// ABOUTME: Structured error taxonomy for catalog requests
// ABOUTME: Controllers branch on Kind; message text is built by the view layer

package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed operation.
type Kind int

const (
	// KindValidation is a client-side check that failed before any request was sent.
	KindValidation Kind = iota + 1
	// KindSessionExpired is a 401 on an authenticated call.
	KindSessionExpired
	// KindRequestFailed is any other non-2xx response.
	KindRequestFailed
	// KindTransportFailure means no usable response was received.
	KindTransportFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSessionExpired:
		return "session_expired"
	case KindRequestFailed:
		return "request_failed"
	case KindTransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Error is the error value returned for every failed request.
type Error struct {
	Kind   Kind
	Status int    // HTTP status, zero for validation and transport failures
	Detail string // server-supplied or client-side message
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		return e.Detail
	case KindSessionExpired:
		return "session expired"
	case KindRequestFailed:
		return fmt.Sprintf("status %d: %s", e.Status, e.Detail)
	case KindTransportFailure:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Detail, e.Err)
		}
		return e.Detail
	default:
		return e.Detail
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationError creates a client-side validation failure.
func ValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Detail: msg}
}

// KindOf returns the Kind of err, or zero when err is not a *Error.
func KindOf(err error) Kind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return 0
}

// IsSessionExpired reports whether err is a session expiry.
func IsSessionExpired(err error) bool {
	return KindOf(err) == KindSessionExpired
}

func sessionExpired(detail string) *Error {
	return &Error{Kind: KindSessionExpired, Status: http.StatusUnauthorized, Detail: detail}
}

func requestFailed(status int, detail string) *Error {
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &Error{Kind: KindRequestFailed, Status: status, Detail: detail}
}

func transportFailure(msg string, err error) *Error {
	return &Error{Kind: KindTransportFailure, Detail: msg, Err: err}
}
