package resume

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a per-document failure.
type Kind string

const (
	KindAcquisitionEmpty      Kind = "acquisition_empty"
	KindUnsupportedFormat     Kind = "unsupported_format"
	KindEnrichmentUnavailable Kind = "enrichment_unavailable"
	KindEnrichmentMalformed   Kind = "enrichment_malformed"
	KindSchemaViolation       Kind = "schema_violation"
	KindRenderingFailure      Kind = "rendering_failure"
	KindStorageFailure        Kind = "storage_failure"
	KindCancelled             Kind = "cancelled"
	KindInternal              Kind = "internal"
)

// Error is a typed failure scoped to a single document.
type Error struct {
	Kind    Kind
	Detail  string
	Path    string // JSON pointer of a schema violation
	Payload string // raw enrichment output for malformed responses
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (at %s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a typed error wrapping err.
func Errorf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf classifies any error. Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	return KindInternal
}

// AsError returns err as a *Error, wrapping unknown errors as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return &Error{Kind: KindOf(err), Err: err}
}
