package eventmail

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes returned by the API.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeValidation       = "validation_error"
	CodeTransportFailure = "transport_failure"
	CodePartialDelivery  = "partial_delivery"
	CodeRateLimited      = "rate_limit_exceeded"
)

// APIError represents an error response from the eventmail API.
type APIError struct {
	StatusCode int          `json:"-"`
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	Fields     []FieldError `json:"fields,omitempty"`
	// Delivered lists the messages sent before a partial failure.
	Delivered []string `json:"delivered,omitempty"`
	// BookingID is set for booking failures after the id was assigned.
	BookingID string `json:"booking_id,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eventmail: API error %d [%s]: %s", e.StatusCode, e.Code, e.Message)
}

// BusinessNotified reports whether the business inbox received the
// submission despite the error.
func (e *APIError) BusinessNotified() bool {
	for _, d := range e.Delivered {
		if d == "business" {
			return true
		}
	}
	return false
}

func parseAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err == nil && apiErr.Message != "" {
		if apiErr.Code == "" {
			apiErr.Code = "unknown"
		}
		return apiErr
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       "unknown",
		Message:    string(body),
	}
}

// IsAPIError checks whether err is an APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
