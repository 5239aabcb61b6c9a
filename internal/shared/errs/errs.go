// Package errs holds the error taxonomy shared by the scraping pipeline.
//
// Callers classify failures with errors.Is / errors.As; the concrete types carry
// enough context (field, URL, parser accessor) to diagnose a failed step.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPrefix is wrapped by the ConfigurationError returned for unsafe cache prefixes.
	ErrInvalidPrefix = errors.New("invalid cache prefix")

	// ErrProxyUnavailable means the proxy pool has no working candidate left.
	ErrProxyUnavailable = errors.New("proxy not found")
)

// ConfigurationError reports an invalid or missing required setting. It is never retried.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("configuration: %s %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError builds a ConfigurationError for field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// HTTPErrorKind tells why an HTTP call failed.
type HTTPErrorKind int

const (
	KindConnection HTTPErrorKind = iota
	KindTimeout
	KindStatus
)

func (k HTTPErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// HTTPError is the transient failure of a single GET.
type HTTPError struct {
	Kind       HTTPErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("http %s: %s: unexpected status %d", e.Kind, e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("http %s: %s: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("http %s: %s", e.Kind, e.URL)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IsConnectionFailure reports whether err is a connection or read-timeout HTTPError,
// the two failures that justify rotating to another proxy.
func IsConnectionFailure(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	return he.Kind == KindConnection || he.Kind == KindTimeout
}

// IsHTTPError reports whether err carries an HTTPError.
func IsHTTPError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}

// ProxyScraperError is returned once the proxy rotation budget is spent.
type ProxyScraperError struct {
	Err error
}

func (e *ProxyScraperError) Error() string {
	reason := ""
	if e.Err != nil {
		reason = e.Err.Error()
	}
	return fmt.Sprintf("ended attempts to proxy reconnect. Reason `%s`", reason)
}

func (e *ProxyScraperError) Unwrap() error {
	return e.Err
}

// MalformedPageError means a page did not match the expected layout.
type MalformedPageError struct {
	Parser   string
	Accessor string
	Marker   string
}

func (e *MalformedPageError) Error() string {
	return fmt.Sprintf("malformed page: %s.%s: missing %s", e.Parser, e.Accessor, e.Marker)
}

// Malformed is shorthand for building a MalformedPageError.
func Malformed(parser, accessor, marker string) *MalformedPageError {
	return &MalformedPageError{Parser: parser, Accessor: accessor, Marker: marker}
}
