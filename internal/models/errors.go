package models

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode identifies the kind of failure in the repository error taxonomy
type ErrorCode string

const (
	// ErrorCodeNetwork indicates a network-level failure reaching the remote API
	ErrorCodeNetwork ErrorCode = "NETWORK_ERROR"

	// ErrorCodeConnection indicates the connection was refused or dropped
	ErrorCodeConnection ErrorCode = "CONNECTION_ERROR"

	// ErrorCodeTimeout indicates the operation did not settle within its deadline
	ErrorCodeTimeout ErrorCode = "TIMEOUT"

	// ErrorCodeUnavailable indicates the remote service reported itself unavailable
	ErrorCodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// ErrorCodeResourceExhausted indicates remote capacity limits were hit
	ErrorCodeResourceExhausted ErrorCode = "RESOURCE_EXHAUSTED"

	// ErrorCodeRateLimited indicates the caller was throttled
	ErrorCodeRateLimited ErrorCode = "RATE_LIMITED"

	// ErrorCodeAuthFailed indicates authentication failed or the session expired
	ErrorCodeAuthFailed ErrorCode = "AUTH_FAILED"

	// ErrorCodeAuthzDenied indicates the caller is not allowed to perform the operation
	ErrorCodeAuthzDenied ErrorCode = "AUTHORIZATION_DENIED"

	// ErrorCodeValidationFailed indicates input failed validation before any network call
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// ErrorCodeNotFound indicates the requested record does not exist
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeConflict indicates a write conflicted with existing state
	ErrorCodeConflict ErrorCode = "CONFLICT"

	// ErrorCodeWireProtocol indicates the remote API returned a protocol error list
	ErrorCodeWireProtocol ErrorCode = "WIRE_PROTOCOL_ERROR"

	// ErrorCodeBusinessRule indicates a domain rule rejected the operation
	ErrorCodeBusinessRule ErrorCode = "BUSINESS_RULE_VIOLATION"

	// ErrorCodeUnknown indicates an unclassified internal failure
	ErrorCodeUnknown ErrorCode = "UNKNOWN"
)

// FieldError describes a validation failure on a single input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// WireLocation is a position within the operation document reported by the remote API
type WireLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// WireError is a single entry from the remote API's error list
type WireError struct {
	Message   string         `json:"message"`
	ErrorType string         `json:"errorType,omitempty"`
	Path      []string       `json:"path,omitempty"`
	Locations []WireLocation `json:"locations,omitempty"`
}

// WireFailure is the raw error produced at the connection boundary when the
// remote API rejects an operation with an error list and no usable data.
// Classification turns it into a wire-protocol RepositoryError.
type WireFailure struct {
	Errors []WireError
}

func (e *WireFailure) Error() string {
	if len(e.Errors) == 0 {
		return "remote API returned an empty error list"
	}
	messages := make([]string, 0, len(e.Errors))
	for _, we := range e.Errors {
		messages = append(messages, we.Message)
	}
	return fmt.Sprintf("remote API returned %d error(s): %s", len(e.Errors), strings.Join(messages, "; "))
}

// RepositoryError is the classified failure value carried by every failed Result.
// Message is for logs; UserMessage is the only text safe to show an end user.
type RepositoryError struct {
	Code        ErrorCode      `json:"code"`
	Message     string         `json:"message"`
	UserMessage string         `json:"user_message"`
	Details     map[string]any `json:"details,omitempty"`
	Operation   string         `json:"operation,omitempty"`
	Model       string         `json:"model,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	FieldErrors []FieldError   `json:"field_errors,omitempty"`
	WireErrors  []WireError    `json:"wire_errors,omitempty"`
	Cause       error          `json:"-"`
}

func (e *RepositoryError) Error() string {
	scope := ""
	if e.Operation != "" || e.Model != "" {
		scope = fmt.Sprintf(" [%s %s]", e.Operation, e.Model)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %s (caused by: %v)", e.Code, scope, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s%s: %s", e.Code, scope, e.Message)
}

func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the failure is transient and safe to retry.
// A wire-protocol error is retryable only when it wraps a retryable cause.
func (e *RepositoryError) IsRetryable() bool {
	switch e.Code {
	case ErrorCodeNetwork, ErrorCodeConnection, ErrorCodeTimeout,
		ErrorCodeUnavailable, ErrorCodeResourceExhausted, ErrorCodeRateLimited:
		return true
	case ErrorCodeWireProtocol:
		if cause, ok := e.Cause.(*RepositoryError); ok {
			return cause.IsRetryable()
		}
		return false
	default:
		return false
	}
}

// IsPublic returns true if UserMessage may be surfaced to an end user with
// specific detail rather than a generic internal-error message
func (e *RepositoryError) IsPublic() bool {
	switch e.Code {
	case ErrorCodeValidationFailed, ErrorCodeNotFound, ErrorCodeConflict,
		ErrorCodeAuthFailed, ErrorCodeAuthzDenied, ErrorCodeBusinessRule:
		return true
	default:
		return false
	}
}

// WithContext attaches operation/model context without overwriting existing values
func (e *RepositoryError) WithContext(operation, model string) *RepositoryError {
	if e.Operation == "" {
		e.Operation = operation
	}
	if e.Model == "" {
		e.Model = model
	}
	return e
}

// HasValidationShape reports whether any wire error looks like a remote
// input-validation failure rather than an infrastructure fault
func (e *RepositoryError) HasValidationShape() bool {
	for _, we := range e.WireErrors {
		errType := strings.ToLower(we.ErrorType)
		msg := strings.ToLower(we.Message)
		if strings.Contains(errType, "validation") ||
			strings.Contains(errType, "badrequest") ||
			strings.Contains(msg, "invalid") ||
			strings.Contains(msg, "required") {
			return true
		}
	}
	return false
}

// ExtractFieldErrors derives {field, message} pairs from wire error paths.
// Entries without a path are skipped.
func (e *RepositoryError) ExtractFieldErrors() []FieldError {
	var fields []FieldError
	for _, we := range e.WireErrors {
		if len(we.Path) == 0 {
			continue
		}
		fields = append(fields, FieldError{
			Field:   we.Path[len(we.Path)-1],
			Message: we.Message,
		})
	}
	return fields
}

// NewNetworkError creates a retryable network failure
func NewNetworkError(message string, cause error) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeNetwork,
		Message:     message,
		UserMessage: "We are having trouble reaching the service. Please try again in a moment.",
		Cause:       cause,
		Timestamp:   time.Now(),
	}
}

// NewConnectionError creates a retryable connection failure
func NewConnectionError(message string, cause error) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeConnection,
		Message:     message,
		UserMessage: "We are having trouble reaching the service. Please try again in a moment.",
		Cause:       cause,
		Timestamp:   time.Now(),
	}
}

// NewTimeoutError creates a retryable timeout failure
func NewTimeoutError(message string, cause error) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeTimeout,
		Message:     message,
		UserMessage: "The request is taking longer than expected. Please try again.",
		Cause:       cause,
		Timestamp:   time.Now(),
	}
}

// NewRateLimitedError creates a retryable throttling failure
func NewRateLimitedError(message string, cause error) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeRateLimited,
		Message:     message,
		UserMessage: "Too many requests right now. Please wait a moment and try again.",
		Cause:       cause,
		Timestamp:   time.Now(),
	}
}

// NewAuthError creates an authentication failure
func NewAuthError(message string, cause error) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeAuthFailed,
		Message:     message,
		UserMessage: "Your session has expired. Please sign in again.",
		Cause:       cause,
		Timestamp:   time.Now(),
	}
}

// NewAuthzError creates an authorization failure
func NewAuthzError(message string) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeAuthzDenied,
		Message:     message,
		UserMessage: "You do not have permission to perform this action.",
		Timestamp:   time.Now(),
	}
}

// NewValidationError creates a validation failure with per-field detail
func NewValidationError(message string, fieldErrors []FieldError) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeValidationFailed,
		Message:     message,
		UserMessage: "Some of the provided information is invalid. Please review and try again.",
		FieldErrors: fieldErrors,
		Timestamp:   time.Now(),
	}
}

// NewNotFoundError creates a not-found failure for a model/id pair
func NewNotFoundError(model, id string) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeNotFound,
		Message:     fmt.Sprintf("%s not found: %s", model, id),
		UserMessage: "The requested record could not be found.",
		Model:       model,
		Details:     map[string]any{"id": id},
		Timestamp:   time.Now(),
	}
}

// NewConflictError creates a write-conflict failure
func NewConflictError(message string) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeConflict,
		Message:     message,
		UserMessage: "This record was changed by someone else. Please reload and try again.",
		Timestamp:   time.Now(),
	}
}

// NewBusinessRuleError creates a domain-rule failure
func NewBusinessRuleError(message string) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeBusinessRule,
		Message:     message,
		UserMessage: "This action is not allowed in the current state.",
		Timestamp:   time.Now(),
	}
}

// NewWireProtocolError creates a failure carrying the remote API's error list
func NewWireProtocolError(wireErrors []WireError, cause error) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeWireProtocol,
		Message:     fmt.Sprintf("remote operation rejected with %d error(s)", len(wireErrors)),
		UserMessage: "The service could not process this request. Please try again or contact support.",
		WireErrors:  wireErrors,
		Cause:       cause,
		Timestamp:   time.Now(),
	}
}

// NewUnknownError creates an unclassified internal failure wrapping its cause
func NewUnknownError(message string, cause error) *RepositoryError {
	return &RepositoryError{
		Code:        ErrorCodeUnknown,
		Message:     message,
		UserMessage: "Something went wrong on our side. Please try again later.",
		Cause:       cause,
		Timestamp:   time.Now(),
	}
}
