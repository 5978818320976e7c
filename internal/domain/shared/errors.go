package shared

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// GenericErrorMessage is shown to shoppers when a failure carries no usable message
const GenericErrorMessage = "Something went wrong. Please try again."

// RemoteError is a non-2xx answer from the storefront API
type RemoteError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Body       []byte `json:"-"`
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("storefront: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("storefront: HTTP %d", e.StatusCode)
}

// NotFound reports whether the remote resource does not exist
func (e *RemoteError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// UserMessage converts any error into the message shown to a shopper.
// Domain errors and remote errors with a message keep their text, everything
// else collapses into GenericErrorMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr.Message
	}

	return GenericErrorMessage
}
