// ABOUTME: Standardized JSON error responses for the admin's HTTP handlers
// ABOUTME: Maps backend request failures onto a consistent error body

package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/2389/joinlab/internal/client"
)

// ErrorResponse is the error body every JSON endpoint returns.
//
// Usage:
//
//	WriteError(w, http.StatusNotFound, ErrUnknownResource, "no resource named \"dept2\"")
type ErrorResponse struct {
	Code    string `json:"code"`              // Machine-readable error code (e.g., "unknown_resource")
	Message string `json:"message"`           // Human-readable error message
	Status  int    `json:"status"`            // HTTP status code
	Field   string `json:"field,omitempty"`   // Form field that caused the error
	Details string `json:"details,omitempty"` // Backend response text or other context
}

// WriteError writes a standardized error response.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
	})
}

// WriteErrorWithField writes an error that points at one form field.
//
// Example:
//
//	WriteErrorWithField(w, http.StatusBadRequest, ErrInvalidField, "page size must be 10, 20 or 50", "pageSize")
func WriteErrorWithField(w http.ResponseWriter, status int, code, message, field string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
		Field:   field,
	})
}

// WriteErrorWithDetails writes an error with additional context.
func WriteErrorWithDetails(w http.ResponseWriter, status int, code, message, details string) {
	writeErrorResponse(w, ErrorResponse{
		Code:    code,
		Message: message,
		Status:  status,
		Details: details,
	})
}

// WriteBackendError reports a failed backend call. A non-2xx backend status
// becomes 502 with the backend's text in Details, and a call that never got
// a response becomes 503.
func WriteBackendError(w http.ResponseWriter, err error) {
	var re *client.RequestError
	if !stderrors.As(err, &re) {
		WriteError(w, http.StatusInternalServerError, ErrInternal, err.Error())
		return
	}
	if re.Status == 0 {
		WriteErrorWithDetails(w, http.StatusServiceUnavailable, ErrBackendUnreachable, "backend unreachable", re.Error())
		return
	}
	WriteErrorWithDetails(w, http.StatusBadGateway, ErrBackend, http.StatusText(re.Status), re.Error())
}

func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}

// Error codes
const (
	// Client errors (4xx)
	ErrInvalidRequest  = "invalid_request"
	ErrInvalidField    = "invalid_field"
	ErrUnknownResource = "unknown_resource"

	// Server errors (5xx)
	ErrInternal           = "internal_error"
	ErrDatabaseError      = "database_error"
	ErrBackend            = "backend_error"
	ErrBackendUnreachable = "backend_unreachable"
)
