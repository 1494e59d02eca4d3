package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the adapter failure taxonomy.
const (
	CodeMissingField      = "MISSING_FIELD"
	CodeInvalidFormat     = "INVALID_FORMAT"
	CodeTimeout           = "TIMEOUT"
	CodeConnectionFailure = "CONNECTION_FAILURE"
	CodeMalformedUpstream = "MALFORMED_UPSTREAM"
	CodeUpstreamHTTP      = "UPSTREAM_HTTP"
	CodeInternal          = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewMissingField reports an absent mandatory request field.
func NewMissingField(field string) error {
	return NewDomainError(CodeMissingField, fmt.Sprintf("missing required field: %s", field), http.StatusBadRequest, map[string]any{"field": field})
}

// NewInvalidFormat reports a value that fails shape validation. Only the
// ticket number takes this path; other ticket fields default instead of
// failing.
func NewInvalidFormat(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidFormat, message, http.StatusBadRequest, details)
}

// NewTimeout reports an outbound call exceeding its deadline. Retryable by
// the caller, never retried internally.
func NewTimeout(err error) error {
	return &DomainError{
		Code:       CodeTimeout,
		Message:    "upstream call timed out",
		HTTPStatus: http.StatusRequestTimeout,
		Err:        err,
	}
}

// NewConnectionFailure reports an unreachable upstream.
func NewConnectionFailure(err error) error {
	return &DomainError{
		Code:       CodeConnectionFailure,
		Message:    "unable to connect to upstream service",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewMalformedUpstream reports a response body that could not be decoded.
func NewMalformedUpstream(err error) error {
	return &DomainError{
		Code:       CodeMalformedUpstream,
		Message:    "received malformed response from upstream service",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewUpstreamHTTPError surfaces a non-2xx upstream status as-is.
func NewUpstreamHTTPError(status int, body string) error {
	return &DomainError{
		Code:       CodeUpstreamHTTP,
		Message:    fmt.Sprintf("upstream returned status %d", status),
		HTTPStatus: status,
		Details:    map[string]any{"upstream_body": body},
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
