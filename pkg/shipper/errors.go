package shipper

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a ShipperError.
type ErrorKind string

const (
	// KindAuth means the credential exchange failed or was rejected twice.
	KindAuth ErrorKind = "auth"
	// KindConnectivity means the carrier could not be reached at all.
	KindConnectivity ErrorKind = "connectivity"
	// KindCarrier means the carrier answered but rejected the request.
	KindCarrier ErrorKind = "carrier"
	// KindArtifact means the booking succeeded but the local label file
	// could not be built.
	KindArtifact ErrorKind = "artifact"
)

// statusTooManyRequests is the HTTP status carriers answer throttled calls
// with.
const statusTooManyRequests = 429

// ErrorEntry is a single carrier-reported error.
type ErrorEntry struct {
	Code    string
	Message string
}

// ShipperError represents an error from a shipping carrier.
type ShipperError struct {
	Carrier    string
	Kind       ErrorKind
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Entries    []ErrorEntry
	Cause      error
}

// Error implements the error interface.
func (e *ShipperError) Error() string {
	msg := e.Message
	if len(e.Entries) > 1 {
		parts := make([]string, 0, len(e.Entries))
		for _, entry := range e.Entries {
			parts = append(parts, entry.Message)
		}
		msg = strings.Join(parts, "; ")
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *ShipperError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ShipperError. Two ShipperErrors match on code;
// the kind sentinels match on kind.
func (e *ShipperError) Is(target error) bool {
	switch target {
	case ErrAuthenticationFailed:
		return e.Kind == KindAuth
	case ErrServiceUnavailable:
		return e.Kind == KindConnectivity
	case ErrLabelNotAvailable:
		return e.Kind == KindArtifact
	case ErrRateLimitExceeded:
		return e.StatusCode == statusTooManyRequests
	}
	t, ok := target.(*ShipperError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Messages returns the human-readable messages of all entries.
func (e *ShipperError) Messages() []string {
	if len(e.Entries) == 0 {
		return []string{e.Message}
	}
	out := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		out[i] = entry.Message
	}
	return out
}

// NewShipperError creates a new ShipperError with a single entry.
func NewShipperError(carrier, code, message string) *ShipperError {
	return &ShipperError{
		Carrier: carrier,
		Kind:    KindCarrier,
		Code:    code,
		Message: message,
		Entries: []ErrorEntry{{Code: code, Message: message}},
	}
}

// WithCause adds a cause to the error.
func (e *ShipperError) WithCause(err error) *ShipperError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ShipperError) WithStatusCode(code int) *ShipperError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *ShipperError) WithRetryable(retryable bool) *ShipperError {
	e.Retryable = retryable
	return e
}

// WithKind sets the error kind.
func (e *ShipperError) WithKind(kind ErrorKind) *ShipperError {
	e.Kind = kind
	return e
}

// WithEntries replaces the entries. An empty list keeps the existing ones,
// so an error never ends up without a message.
func (e *ShipperError) WithEntries(entries []ErrorEntry) *ShipperError {
	if len(entries) == 0 {
		return e
	}
	e.Entries = entries
	e.Code = entries[0].Code
	e.Message = entries[0].Message
	return e
}

// NewAuthError creates an authentication error.
func NewAuthError(carrier, message string) *ShipperError {
	return NewShipperError(carrier, "auth", message).WithKind(KindAuth)
}

// NewConnectivityError creates an error for a call that got no response.
func NewConnectivityError(carrier, message string) *ShipperError {
	return NewShipperError(carrier, "http_request_failed", message).
		WithKind(KindConnectivity).
		WithRetryable(true)
}

// NewArtifactError creates an error for a failed local label build.
func NewArtifactError(carrier, message string) *ShipperError {
	return NewShipperError(carrier, "upload", message).WithKind(KindArtifact)
}

// Sentinel errors for common shipping scenarios.
var (
	// ErrServiceUnavailable indicates the carrier service is temporarily unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrLabelNotAvailable indicates the label file could not be produced.
	ErrLabelNotAvailable = errors.New("label not available")

	// ErrAuthenticationFailed indicates carrier authentication failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrRateLimitExceeded indicates the carrier rate limit was exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var shipperErr *ShipperError
	if errors.As(err, &shipperErr) {
		return shipperErr.Retryable
	}
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrRateLimitExceeded)
}

// IsArtifactError reports whether err means the booking succeeded but the
// label file could not be built.
func IsArtifactError(err error) bool {
	var shipperErr *ShipperError
	return errors.As(err, &shipperErr) && shipperErr.Kind == KindArtifact
}
