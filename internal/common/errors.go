package common

import (
	"context"
	"errors"
	"fmt"
)

// Input errors from the ingest stage. Never retried: a missing or unsupported
// local file is not transient.
var (
	ErrNotFound        = errors.New("document not found")
	ErrUnsupportedType = errors.New("unsupported document type")
)

// ErrArtifactNotFound is returned by artifact stores when a key has no value.
var ErrArtifactNotFound = errors.New("artifact not found")

// ErrStoreUnavailable marks an artifact store that could not serve a read or
// write. Stage outcomes are unknowable without the store, so runs abort on it
// instead of reporting a stage failure.
var ErrStoreUnavailable = errors.New("artifact store unavailable")

// ErrorKind classifies an expected failure of a remote capability.
type ErrorKind string

const (
	KindTimeout            ErrorKind = "timeout"
	KindAuthFailure        ErrorKind = "auth_failure"
	KindRateLimited        ErrorKind = "rate_limited"
	KindMalformedResponse  ErrorKind = "malformed_response"
	KindUnsupportedContent ErrorKind = "unsupported_content"
	KindSchemaViolation    ErrorKind = "schema_violation"
)

// Retryable reports whether a retry of the same call can plausibly succeed.
// Auth failures, unsupported content, malformed responses and structural
// schema violations will not get better on a second attempt.
func (k ErrorKind) Retryable() bool {
	return k == KindTimeout || k == KindRateLimited
}

// ServiceError is a classified failure of an external capability call.
// Providers return it; stage clients branch on Kind instead of string
// matching.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError builds a classified capability failure.
func NewServiceError(kind ErrorKind, message string, cause error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the ErrorKind from err. Deadline expiry of a hung call
// maps to KindTimeout; anything else unclassified maps to
// KindMalformedResponse, so callers always get a member of the taxonomy.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindMalformedResponse
}

// ValidationError reports an irreparable candidate claim. Kept distinct from
// ServiceError so run statuses can tell "model output unusable" apart from
// "service misbehaved".
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
