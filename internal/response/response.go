// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the standard API response envelope.
type Envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with a message and optional data.
func OK(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Message: message, Data: data})
}

// Created writes a 201 response with a message and data.
func Created(w http.ResponseWriter, message string, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Message: message, Data: data})
}

// Fail writes an error response with the given status, message and error detail.
func Fail(w http.ResponseWriter, status int, message, detail string) {
	JSON(w, status, Envelope{Message: message, Error: detail})
}

// BadRequest writes a 400 response carrying the validation detail.
func BadRequest(w http.ResponseWriter, detail string) {
	Fail(w, http.StatusBadRequest, "invalid request", detail)
}

// Unauthorized writes a 401 response.
func Unauthorized(w http.ResponseWriter, detail string) {
	Fail(w, http.StatusUnauthorized, "unauthorized", detail)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, detail string) {
	Fail(w, http.StatusNotFound, "not found", detail)
}

// InternalError writes a 500 response with a generic message and the raw error string.
func InternalError(w http.ResponseWriter, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	Fail(w, http.StatusInternalServerError, "internal server error", detail)
}
