package core

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeUpstream indicates the upstream API answered with a non-2xx status
	ErrorTypeUpstream ErrorType = "upstream_error"
	// ErrorTypeTimeout indicates the upstream call exceeded its deadline
	ErrorTypeTimeout ErrorType = "upstream_timeout"
	// ErrorTypeTransport indicates the upstream could not be reached or read
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeNotFound indicates the requested resource does not exist (404)
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeInvalidRequest indicates a client error (4xx)
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	// ErrorTypeMalformed indicates a payload that could not be decoded
	ErrorTypeMalformed ErrorType = "malformed_data"
)

// GatewayError is the base error type for all gateway errors
type GatewayError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Operation  string    `json:"operation,omitempty"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Operation, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *GatewayError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	// Default status codes based on error type
	switch e.Type {
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case ErrorTypeUpstream, ErrorTypeTransport:
		return http.StatusBadGateway
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to the response envelope served to clients.
func (e *GatewayError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"detail": e.Message,
	}
}

// NewUpstreamError creates an error for a non-2xx upstream response. The
// upstream status is preserved so handlers can propagate it.
func NewUpstreamError(operation string, statusCode int, message string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeUpstream,
		Message:    message,
		StatusCode: statusCode,
		Operation:  operation,
		Err:        err,
	}
}

// NewTimeoutError creates an error for an upstream call that hit its deadline (504)
func NewTimeoutError(operation string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeTimeout,
		Message:    "upstream request timed out",
		StatusCode: http.StatusGatewayTimeout,
		Operation:  operation,
		Err:        err,
	}
}

// NewTransportError creates an error for a failed connection or read (502)
func NewTransportError(operation string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeTransport,
		Message:    "upstream request failed",
		StatusCode: http.StatusBadGateway,
		Operation:  operation,
		Err:        err,
	}
}

// NewNotFoundError creates a new not found error (404)
func NewNotFoundError(message string) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInvalidRequestError creates a new invalid request error (400)
func NewInvalidRequestError(message string) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewMalformedDataError creates an error for a payload that failed to decode.
// Callers treat it as non-fatal where the data has a fallback source.
func NewMalformedDataError(source string, err error) *GatewayError {
	return &GatewayError{
		Type:      ErrorTypeMalformed,
		Message:   fmt.Sprintf("malformed data from %s", source),
		Operation: source,
		Err:       err,
	}
}
