package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeQuota       ErrorType = "quota"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Reason  string // API-supplied reason code, e.g. "quotaExceeded"
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsQuotaExceeded reports whether err is a quota-exhaustion rejection from
// the remote API. Only these errors are absorbed by key rotation.
func IsQuotaExceeded(err error) bool {
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Type == ErrorTypeQuota
	}
	return false
}

// IsRetryable checks if an error type should be retried at the transport level
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeServerError:
		return true
	case ErrorTypeQuota, ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeParsing, ErrorTypeValidation:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
