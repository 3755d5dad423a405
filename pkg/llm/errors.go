package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies completion failures.
type ErrorType string

const (
	// ErrorTypeEmpty means the endpoint answered but returned no usable text.
	ErrorTypeEmpty ErrorType = "empty_response"
	// ErrorTypeTransport covers connection, timeout, and server failures.
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeAuth means the endpoint rejected our credentials.
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeUnknown is the fallback classification.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is a structured completion error with classification.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new structured completion error.
func NewError(errType ErrorType, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// ClassifyError categorizes an error from a completion call.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key"):
		return NewError(ErrorTypeAuth, "authentication failed", err)

	case strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline exceeded") ||
		strings.Contains(lower, "context canceled"):
		return NewError(ErrorTypeTransport, "request timeout", err)

	case strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host"):
		return NewError(ErrorTypeTransport, "connection failed", err)

	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		return NewError(ErrorTypeTransport, "rate limited", err)

	case strings.Contains(lower, "500") || strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "504"):
		return NewError(ErrorTypeTransport, "server error", err)
	}

	return NewError(ErrorTypeUnknown, "completion error", err)
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}
