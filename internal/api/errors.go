package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for daemon responses that callers branch on.
var (
	// ErrUnauthorized is returned when the daemon rejects the secret (401).
	ErrUnauthorized = errors.New("api: unauthorized (check the controller secret)")
	// ErrNotFound is returned for unknown proxies, groups or connections (404).
	ErrNotFound = errors.New("api: not found")
)

// TransportKind classifies transport-level failures.
type TransportKind int

const (
	// KindConnectionRefused means the daemon could not be reached at all.
	KindConnectionRefused TransportKind = iota
	// KindTimeout means the request exceeded its deadline.
	KindTimeout
	// KindMalformed means the daemon answered with a payload we could not decode.
	KindMalformed
)

func (k TransportKind) String() string {
	switch k {
	case KindConnectionRefused:
		return "connection refused"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed response"
	default:
		return "transport error"
	}
}

// TransportError wraps a low-level failure talking to the daemon.
type TransportError struct {
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("api: %s", e.Kind)
	}
	return fmt.Sprintf("api: %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline, satisfying the
// same shape as net.Error for callers that classify by interface.
func (e *TransportError) Timeout() bool { return e.Kind == KindTimeout }

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindTimeout
}

// IsUnreachable reports whether err means the daemon could not be reached.
func IsUnreachable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindConnectionRefused
}
