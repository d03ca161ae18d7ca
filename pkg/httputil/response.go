// Package httputil provides HTTP handler utilities for consistent error handling,
// JSON encoding/decoding, and request parsing.
package httputil

import (
	"encoding/json"
	"net/http"
)

// Client-visible messages for pipeline rejections. These are fixed strings:
// they must not leak limiting keys, token values, or resolver internals.
const (
	MsgTooManyRequests = "Too many requests, please try again later."
	MsgInvalidCSRF     = "Invalid CSRF token"
	MsgUnauthenticated = "Authentication required"
	MsgForbidden       = "Access denied"
	MsgNotFound        = "Not found"
	MsgInternalError   = "Internal server error"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteErrorMessage writes a JSON error response with the shape {"error": message}
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// WriteTooManyRequests writes the fixed 429 rate limit body
func WriteTooManyRequests(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusTooManyRequests, MsgTooManyRequests)
}

// WriteInvalidCSRF writes the fixed 403 CSRF rejection body
func WriteInvalidCSRF(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusForbidden, MsgInvalidCSRF)
}

// WriteUnauthorized writes a 401 response
func WriteUnauthorized(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusUnauthorized, MsgUnauthenticated)
}

// WriteForbidden writes a 403 response
func WriteForbidden(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusForbidden, MsgForbidden)
}

// WriteNotFound writes a 404 response
func WriteNotFound(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusNotFound, MsgNotFound)
}

// WriteInternalError writes a generic 500 response. The underlying error is
// never included; callers log it server-side.
func WriteInternalError(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusInternalServerError, MsgInternalError)
}

// FieldError describes a single failed field in a validation response
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse is the 400 body for request-shape failures
type ValidationErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

// WriteValidationError writes a 400 with field-level details. Raw input
// values are deliberately excluded from the messages.
func WriteValidationError(w http.ResponseWriter, details []FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ValidationErrorResponse{
		Error:   "Request validation failed",
		Code:    "validation_failed",
		Details: details,
	})
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteNoContent writes a successful response with no content (204 No Content)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
