package diagnosis

import (
	"errors"
	"fmt"
	"strings"
)

// Workflow-level sentinel errors, compared with errors.Is
var (
	// ErrNoImage is returned when an action needs a selected image and none exists
	ErrNoImage = errors.New("select an image first")

	// ErrNoResult is returned when exporting without a diagnosis
	ErrNoResult = errors.New("analyze an image before exporting a report")

	// ErrBusy is returned when the requested action's trigger is disabled by an outstanding request
	ErrBusy = errors.New("another request is still in progress")
)

// ErrorType represents the type of service-related error
type ErrorType string

const (
	// ErrTypeNetwork indicates transport failures
	ErrTypeNetwork ErrorType = "network"

	// ErrTypeTimeout indicates the request deadline was exceeded
	ErrTypeTimeout ErrorType = "timeout"

	// ErrTypeStatus indicates a non-2xx response
	ErrTypeStatus ErrorType = "status"

	// ErrTypeDecode indicates a body that does not parse as the expected shape
	ErrTypeDecode ErrorType = "decode"

	// ErrTypeValidation indicates input validation errors
	ErrTypeValidation ErrorType = "validation"

	// ErrTypeConfiguration indicates configuration errors
	ErrTypeConfiguration ErrorType = "configuration"

	// ErrTypeInternal indicates internal client errors
	ErrTypeInternal ErrorType = "internal"
)

// ServiceError represents a transport or protocol failure talking to the diagnosis service
type ServiceError struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message provides human-readable error description
	Message string `json:"message"`

	// Endpoint is the service path that failed
	Endpoint string `json:"endpoint,omitempty"`

	// StatusCode for HTTP-related errors
	StatusCode int `json:"status_code,omitempty"`

	// RequestID correlates the failure with service logs
	RequestID string `json:"request_id,omitempty"`

	// Underlying error that caused this error
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	var parts []string

	if e.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("endpoint=%s", e.Endpoint))
	}

	parts = append(parts, fmt.Sprintf("type=%s", e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error type
func (e *ServiceError) Is(target error) bool {
	if se, ok := target.(*ServiceError); ok {
		return e.Type == se.Type
	}
	return false
}

// IsRetryable reports whether a later manual attempt could succeed.
// The client never retries on its own.
func (e *ServiceError) IsRetryable() bool {
	switch e.Type {
	case ErrTypeNetwork, ErrTypeTimeout:
		return true
	case ErrTypeStatus:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// UserMessage is the short text shown in the UI
func (e *ServiceError) UserMessage() string {
	switch e.Type {
	case ErrTypeNetwork:
		return "Could not reach the diagnosis service"
	case ErrTypeTimeout:
		return "The diagnosis service did not answer in time"
	case ErrTypeStatus:
		if e.Message != "" {
			return fmt.Sprintf("Service error (%d): %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("Service error (%d)", e.StatusCode)
	case ErrTypeDecode:
		return "The diagnosis service returned an unexpected response"
	default:
		return e.Message
	}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewServiceError creates a new service error
func NewServiceError(errType ErrorType, message, endpoint string) *ServiceError {
	return &ServiceError{
		Type:     errType,
		Message:  message,
		Endpoint: endpoint,
	}
}

// NewServiceErrorWithCause creates a service error with an underlying cause
func NewServiceErrorWithCause(errType ErrorType, message, endpoint string, cause error) *ServiceError {
	return &ServiceError{
		Type:     errType,
		Message:  message,
		Endpoint: endpoint,
		Cause:    cause,
	}
}

// NewStatusError creates an error for a non-2xx response
func NewStatusError(endpoint string, statusCode int, message string) *ServiceError {
	return &ServiceError{
		Type:       ErrTypeStatus,
		Message:    message,
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// NewValidationError creates a validation error
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsServiceError checks if an error is a transport or protocol failure
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// IsWarning reports whether err is a recoverable user-input or precondition problem
func IsWarning(err error) bool {
	return errors.Is(err, ErrNoImage) || errors.Is(err, ErrNoResult) || errors.Is(err, ErrBusy)
}

// UserMessage returns the text to show for any workflow error
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return err.Error()
}
