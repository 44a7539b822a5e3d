package handler

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the "code" field of error responses
const (
	CodeInvalidRequest   = "invalid_request"
	CodeValidation       = "validation_error"
	CodeTransportFailure = "transport_failure"
	CodePartialDelivery  = "partial_delivery"
)

// ErrorResponse is the error envelope. Error holds human-readable text.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Code      string      `json:"code"`
	Fields    interface{} `json:"fields,omitempty"`
	Delivered []string    `json:"delivered,omitempty"`
	BookingID string      `json:"booking_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
