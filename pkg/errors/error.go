// Package errors provides error types for report notification delivery
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// NotifyError is the single error kind surfaced by a notification channel.
// Callers see the human-readable Message through Error(); Code and Category
// are available for logging and metrics.
type NotifyError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Platform   string    `json:"platform,omitempty"`
	Target     string    `json:"target,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	Cause error `json:"-"`
}

// Error implements the error interface
func (e *NotifyError) Error() string {
	return e.Message
}

// Detail returns the message prefixed with the code and platform
func (e *NotifyError) Detail() string {
	if e.Platform != "" {
		return fmt.Sprintf("%s: %s (platform: %s)", e.Code, e.Message, e.Platform)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *NotifyError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error by code
func (e *NotifyError) Is(target error) bool {
	if targetErr, ok := target.(*NotifyError); ok {
		return e.Code == targetErr.Code
	}
	return false
}

// Category returns the category of the error code
func (e *NotifyError) Category() Category {
	return GetCategory(e.Code)
}

// MarshalJSON implements json.Marshaler
func (e *NotifyError) MarshalJSON() ([]byte, error) {
	type Alias NotifyError
	return json.Marshal(&struct {
		*Alias
		Category     Category `json:"category"`
		CauseMessage string   `json:"cause_message,omitempty"`
	}{
		Alias:        (*Alias)(e),
		Category:     e.Category(),
		CauseMessage: e.getCauseMessage(),
	})
}

func (e *NotifyError) getCauseMessage() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return ""
}

// WithCause adds a cause error
func (e *NotifyError) WithCause(cause error) *NotifyError {
	e.Cause = cause
	return e
}

// WithPlatform sets the platform
func (e *NotifyError) WithPlatform(platform string) *NotifyError {
	e.Platform = platform
	return e
}

// WithTarget sets the target
func (e *NotifyError) WithTarget(target string) *NotifyError {
	e.Target = target
	return e
}

// WithStatusCode sets the HTTP status code returned by the endpoint
func (e *NotifyError) WithStatusCode(code int) *NotifyError {
	e.StatusCode = code
	return e
}

// Constructor functions

// New creates a new NotifyError
func New(code ErrorCode, message string) *NotifyError {
	return &NotifyError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a new NotifyError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *NotifyError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error, keeping its text as the message
func Wrap(err error, code ErrorCode) *NotifyError {
	return New(code, err.Error()).WithCause(err)
}

// Wrapf wraps an existing error with a NotifyError and formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *NotifyError {
	return Newf(code, format, args...).WithCause(err)
}

// Error classification functions

// IsConfigError checks if err is a recipient configuration error
func IsConfigError(err error) bool {
	return categoryOf(err) == CategoryConfiguration
}

// IsTransportError checks if err is a transport failure
func IsTransportError(err error) bool {
	return categoryOf(err) == CategoryTransport
}

// IsHTTPError checks if err is a non-2xx response
func IsHTTPError(err error) bool {
	return categoryOf(err) == CategoryHTTP
}

// IsUpstreamError checks if err carries report generation errors
func IsUpstreamError(err error) bool {
	return categoryOf(err) == CategoryUpstream
}

func categoryOf(err error) Category {
	var notifyErr *NotifyError
	if errors.As(err, &notifyErr) {
		return notifyErr.Category()
	}
	return CategoryUnknown
}

// Error extraction functions

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var notifyErr *NotifyError
	if errors.As(err, &notifyErr) {
		return notifyErr.Code
	}
	return ErrInternal
}

// GetErrorMessage extracts the error message from an error
func GetErrorMessage(err error) string {
	var notifyErr *NotifyError
	if errors.As(err, &notifyErr) {
		return notifyErr.Message
	}
	return err.Error()
}
