package errors

import (
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ValidationError      ErrorType = "VALIDATION_ERROR"
	ConfigMissingError   ErrorType = "CONFIGURATION_MISSING"
	ProviderError        ErrorType = "PROVIDER_UNAVAILABLE"
	MalformedDataError   ErrorType = "MALFORMED_DATA"
	UnsupportedModeError ErrorType = "UNSUPPORTED_MODE"
	NotFoundError        ErrorType = "NOT_FOUND"
	ServerError          ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// Helper constructors for the error taxonomy.

// ConfigMissing reports an absent API key or similar configuration. No
// provider call is attempted in this case.
func ConfigMissing(setting string) *AppError {
	return &AppError{
		Type:       ConfigMissingError,
		Message:    fmt.Sprintf("missing configuration: %s", setting),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// ProviderUnavailable reports a transport or upstream failure for an
// external provider.
func ProviderUnavailable(provider string, err error) *AppError {
	return &AppError{
		Type:       ProviderError,
		Message:    fmt.Sprintf("%s request failed", provider),
		Detail:     err.Error(),
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

// MalformedData reports an unexpected response shape from a provider.
func MalformedData(provider string, detail string) *AppError {
	return &AppError{
		Type:       MalformedDataError,
		Message:    fmt.Sprintf("unexpected %s response format", provider),
		Detail:     detail,
		HTTPStatus: http.StatusBadGateway,
	}
}

// UnsupportedMode reports a transport mode absent from the factor table.
func UnsupportedMode(mode string, valid []string) *AppError {
	return &AppError{
		Type:       UnsupportedModeError,
		Message:    fmt.Sprintf("transport mode '%s' not supported", mode),
		Detail:     fmt.Sprintf("valid modes: %s", strings.Join(valid, ", ")),
		HTTPStatus: http.StatusBadRequest,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, UnsupportedModeError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case ConfigMissingError:
		return http.StatusServiceUnavailable
	case ProviderError, MalformedDataError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
