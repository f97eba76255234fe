package catalog

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies upstream catalog failures.
type ErrorKind string

const (
	// KindBadRequest marks a malformed upstream query (4xx other than 404).
	// Not fallback-eligible: retrying the same query elsewhere cannot help.
	KindBadRequest ErrorKind = "bad_request"

	// KindNotFound marks a 404 from the upstream.
	KindNotFound ErrorKind = "not_found"

	// KindServerUnavailable marks any 5xx from the upstream, including 503.
	KindServerUnavailable ErrorKind = "server_unavailable"

	// KindUnreachable marks transport failures and timeouts with no HTTP status.
	KindUnreachable ErrorKind = "unreachable"

	// KindAllSourcesExhausted marks a category whose direct and fallback
	// attempts both failed.
	KindAllSourcesExhausted ErrorKind = "all_sources_exhausted"
)

// FallbackEligible reports whether the caller should try the search
// fallback path after an error of this kind.
func (k ErrorKind) FallbackEligible() bool {
	switch k {
	case KindNotFound, KindServerUnavailable, KindUnreachable:
		return true
	default:
		return false
	}
}

// APIError is an upstream catalog error with its classification.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("catalog %s error (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("catalog %s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("catalog %s error: %s", e.Kind, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx HTTP status to an error kind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServerUnavailable
	default:
		return KindBadRequest
	}
}

// statusError builds an APIError for a non-2xx response.
func statusError(status int, message string) *APIError {
	return &APIError{
		Kind:       classifyStatus(status),
		StatusCode: status,
		Message:    message,
	}
}

// transportError wraps a network or timeout failure where no HTTP status exists.
func transportError(message string, err error) *APIError {
	return &APIError{
		Kind:    KindUnreachable,
		Message: message,
		Err:     err,
	}
}
