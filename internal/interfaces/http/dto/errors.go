package dto

import (
	"net/http"

	"github.com/assistec/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	// ErrCodeValidation is used when a field or business value is rejected
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the body cannot be decoded
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when no actor could be resolved
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the bearer token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the bearer token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource and state error codes
const (
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used when an Idempotency-Key is still being processed
	ErrCodeConflict          = "ERR_CONFLICT"
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeAggregationFailed is used when container totals could not be persisted
	ErrCodeAggregationFailed = "ERR_AGGREGATION_FAILED"
	// ErrCodeConversionFailed is used when a budget conversion was rolled back
	ErrCodeConversionFailed = "ERR_CONVERSION_FAILED"
)

// ErrCodeRateLimited is used when the rate limit is exceeded
const ErrCodeRateLimited = "ERR_RATE_LIMITED"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,

	// Engine failures
	ErrCodeAggregationFailed: http.StatusInternalServerError,
	ErrCodeConversionFailed:  http.StatusConflict,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodes maps shared.DomainError codes to the ERR_ codes of the API
var DomainErrorCodes = map[string]string{
	shared.CodeValidation:        ErrCodeValidation,
	shared.CodeNotFound:          ErrCodeNotFound,
	shared.CodeUnauthorized:      ErrCodeUnauthorized,
	shared.CodeInvalidState:      ErrCodeInvalidState,
	shared.CodeInsufficientStock: ErrCodeInsufficientStock,
	shared.CodeAggregationFailed: ErrCodeAggregationFailed,
	shared.CodeConversionFailed:  ErrCodeConversionFailed,
}

// NormalizeErrorCode converts a domain error code to its ERR_ form.
// Codes already in that form, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodes[code]; ok {
		return newCode
	}
	return code
}
