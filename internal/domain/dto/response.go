package dto

import (
	"net/http"
	"time"
)

// Error codes carried in ErrorResponse.Error.
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeInternal       = "internal_error"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeForbidden      = "forbidden"
	ErrCodeNotFound       = "not_found"
	ErrCodeRateLimit      = "rate_limit_exceeded"
	ErrCodeTimeout        = "timeout"
	// ErrCodeNoSolution means no fare path could be priced for the passengers.
	ErrCodeNoSolution = "no_solution"
	// ErrCodeSearchLimit means the search ran past its combination limits.
	ErrCodeSearchLimit = "search_limit_exceeded"
	ErrCodeUnavailable = "service_unavailable"
)

var statusErrCodes = map[int]string{
	http.StatusBadRequest:          ErrCodeInvalidRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusForbidden:           ErrCodeForbidden,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusRequestTimeout:      ErrCodeTimeout,
	http.StatusUnprocessableEntity: ErrCodeSearchLimit,
	http.StatusTooManyRequests:     ErrCodeRateLimit,
	http.StatusServiceUnavailable:  ErrCodeUnavailable,
	http.StatusGatewayTimeout:      ErrCodeTimeout,
}

// SuccessResponse wraps successful API responses with metadata.
// @Description Successful API response wrapper
type SuccessResponse struct {
	// Data is the payload, a PricingResult for the price endpoint.
	Data      interface{} `json:"data" swaggertype:"object"`
	RequestID string      `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time   `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name SuccessResponse

// ErrorResponse is the body of every failed API call.
// @Description Standardized error response
type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message,omitempty" example:"passengers: at least one passenger type is required"`
	// Details maps a field or a pricing attribute to what went wrong with it.
	Details       map[string]string `json:"details,omitempty"`
	RequestID     string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	TransactionID string            `json:"transaction_id,omitempty" example:"5c2b0b3e-7d1f-4a70-9f1e-2d4c0c1b9a11"`
	Timestamp     time.Time         `json:"timestamp" example:"2025-01-28T10:00:00Z"`
} // @name ErrorResponse

// NewError creates an ErrorResponse stamped with the current time.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: code, Message: message, Timestamp: time.Now()}
}

// WithRequestID returns a copy of e carrying requestID.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetails returns a copy of e carrying details. Empty details are dropped.
func (e ErrorResponse) WithDetails(details map[string]string) ErrorResponse {
	if len(details) == 0 {
		e.Details = nil
		return e
	}
	e.Details = details
	return e
}

// ErrCodeFromStatus returns the error code reported for an HTTP status.
// Unlisted statuses report ErrCodeInternal.
func ErrCodeFromStatus(status int) string {
	if code, ok := statusErrCodes[status]; ok {
		return code
	}
	return ErrCodeInternal
}
