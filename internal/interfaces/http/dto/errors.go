package dto

import "net/http"

// Error codes. Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"

	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeInvalidState = "ERR_INVALID_STATE"

	// ErrCodeCartNotReady is returned when no cart/location is known yet
	ErrCodeCartNotReady     = "ERR_CART_NOT_READY"
	ErrCodeInvalidQuantity  = "ERR_INVALID_QUANTITY"
	ErrCodeInvalidDiscount  = "ERR_INVALID_DISCOUNT"
	ErrCodeInvalidView      = "ERR_INVALID_VIEW"
	ErrCodeLocationRequired = "ERR_LOCATION_REQUIRED"
	ErrCodeSessionRequired  = "ERR_SESSION_REQUIRED"
	ErrCodeTokenExpired     = "ERR_TOKEN_EXPIRED"

	// ErrCodeRemote carries a 4xx answer of the storefront API
	ErrCodeRemote = "ERR_REMOTE"
	// ErrCodeUpstream is used for storefront 5xx answers and transport failures
	ErrCodeUpstream = "ERR_UPSTREAM"
	// ErrCodeNotConfigured is used when the storefront API key or URL is missing
	ErrCodeNotConfigured = "ERR_NOT_CONFIGURED"

	ErrCodeRateLimited  = "ERR_RATE_LIMITED"
	ErrCodeBodyTooLarge = "ERR_BODY_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	ErrCodeCartNotReady:     http.StatusConflict,
	ErrCodeInvalidQuantity:  http.StatusBadRequest,
	ErrCodeInvalidDiscount:  http.StatusBadRequest,
	ErrCodeInvalidView:      http.StatusBadRequest,
	ErrCodeLocationRequired: http.StatusBadRequest,
	ErrCodeSessionRequired:  http.StatusBadRequest,
	ErrCodeTokenExpired:     http.StatusUnprocessableEntity,

	ErrCodeRemote:        http.StatusBadRequest,
	ErrCodeUpstream:      http.StatusBadGateway,
	ErrCodeNotConfigured: http.StatusInternalServerError,

	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeBodyTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to API error codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":         ErrCodeNotFound,
	"INVALID_INPUT":     ErrCodeInvalidInput,
	"INVALID_STATE":     ErrCodeInvalidState,
	"CART_NOT_READY":    ErrCodeCartNotReady,
	"INVALID_QUANTITY":  ErrCodeInvalidQuantity,
	"INVALID_DISCOUNT":  ErrCodeInvalidDiscount,
	"INVALID_VIEW":      ErrCodeInvalidView,
	"LOCATION_REQUIRED": ErrCodeLocationRequired,
	"VALIDATION_ERROR":  ErrCodeValidation,
	"BAD_REQUEST":       ErrCodeBadRequest,
	"INTERNAL_ERROR":    ErrCodeInternal,

	"CART_CREATE_FAILED": ErrCodeUpstream,
	"NOT_CONFIGURED":     ErrCodeNotConfigured,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
